package handler

import (
	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PelangganHandler struct {
	service service.CustomerService
}

func NewPelangganHandler(s service.CustomerService) *PelangganHandler {
	return &PelangganHandler{service: s}
}

// Profile GET /api/v1/pelanggan/:kode_pelanggan
func (h *PelangganHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.UserContext(), c.Params("kode_pelanggan"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": profile})
}

// Saldo GET /api/v1/saldo/:kode_pelanggan
func (h *PelangganHandler) Saldo(c *fiber.Ctx) error {
	resp, err := h.service.Saldo(c.UserContext(), c.Params("kode_pelanggan"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// SaldoList GET /api/v1/saldo-list?sort_by=&order=
func (h *PelangganHandler) SaldoList(c *fiber.Ctx) error {
	resp, err := h.service.SaldoList(c.UserContext(), service.SaldoListRequest{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("order"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// SearchSaldo GET /api/v1/saldo/search/:query
func (h *PelangganHandler) SearchSaldo(c *fiber.Ctx) error {
	resp, err := h.service.SearchSaldo(c.UserContext(), c.Params("query"), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListDetailTransaksi GET /api/v1/list-detail-transaksi?trx_id=
func (h *PelangganHandler) ListDetailTransaksi(c *fiber.Ctx) error {
	resp, err := h.service.ListDetailTransaksi(c.UserContext(), c.Query("trx_id"), c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// DetailTransaksi GET /api/v1/detail-transaksi/:trx_id
func (h *PelangganHandler) DetailTransaksi(c *fiber.Ctx) error {
	resp, err := h.service.DetailTransaksi(c.UserContext(), c.Params("trx_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func selfKode(c *fiber.Ctx) (string, error) {
	kode := kodePelangganFrom(c)
	if kode == "" {
		return "", apperror.Forbidden("Token tidak terkait pelanggan")
	}
	return kode, nil
}

// MySaldo GET /api/v1/me/saldo
func (h *PelangganHandler) MySaldo(c *fiber.Ctx) error {
	kode, err := selfKode(c)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.service.Saldo(c.UserContext(), kode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// MyTransaksi GET /api/v1/me/transaksi
func (h *PelangganHandler) MyTransaksi(c *fiber.Ctx) error {
	kode, err := selfKode(c)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.service.Transaksi(c.UserContext(), kode, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// MyRiwayat GET /api/v1/me/riwayat/:tahun/:bulan
func (h *PelangganHandler) MyRiwayat(c *fiber.Ctx) error {
	kode, err := selfKode(c)
	if err != nil {
		return respondError(c, err)
	}
	tahun, err := c.ParamsInt("tahun")
	if err != nil {
		return respondError(c, apperror.Validation("Tahun harus berupa angka"))
	}
	bulan, err := c.ParamsInt("bulan")
	if err != nil {
		return respondError(c, apperror.Validation("Bulan harus berupa angka"))
	}

	resp, err := h.service.Riwayat(c.UserContext(), kode, tahun, bulan)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
