package handler

import (
	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LaporanHandler struct {
	service service.ReportService
}

func NewLaporanHandler(s service.ReportService) *LaporanHandler {
	return &LaporanHandler{service: s}
}

func laporanRequest(c *fiber.Ctx, kodePelanggan string) service.LaporanListRequest {
	return service.LaporanListRequest{
		KodePelanggan: kodePelanggan,
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 10),
	}
}

// List GET /api/v1/laporan-pelanggan/:kode_pelanggan
func (h *LaporanHandler) List(c *fiber.Ctx) error {
	resp, err := h.service.List(c.UserContext(), laporanRequest(c, c.Params("kode_pelanggan")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListAll GET /api/v1/laporan-pelanggan/semua/all?search=&start_date=&end_date=
func (h *LaporanHandler) ListAll(c *fiber.Ctx) error {
	req := laporanRequest(c, "")
	req.Search = c.Query("search")
	resp, err := h.service.ListAll(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Mine GET /api/v1/me/laporan
func (h *LaporanHandler) Mine(c *fiber.Ctx) error {
	kode, err := selfKode(c)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := h.service.List(c.UserContext(), laporanRequest(c, kode))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Monthly GET /api/v1/laporan-pelanggan/:kode_pelanggan/:tahun/:bulan
func (h *LaporanHandler) Monthly(c *fiber.Ctx) error {
	tahun, err := c.ParamsInt("tahun")
	if err != nil {
		return respondError(c, apperror.Validation("Tahun harus berupa angka"))
	}
	bulan, err := c.ParamsInt("bulan")
	if err != nil {
		return respondError(c, apperror.Validation("Bulan harus berupa angka"))
	}

	resp, err := h.service.Monthly(c.UserContext(), c.Params("kode_pelanggan"), tahun, bulan)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Detail GET /api/v1/laporan-pelanggan/detail/:id
func (h *LaporanHandler) Detail(c *fiber.Ctx) error {
	line, err := h.service.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": line})
}

// Statistik GET /api/v1/laporan-pelanggan/statistik/:kode_pelanggan?periode=30
func (h *LaporanHandler) Statistik(c *fiber.Ctx) error {
	resp, err := h.service.Statistik(c.UserContext(), c.Params("kode_pelanggan"), c.QueryInt("periode", 30))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
