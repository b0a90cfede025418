package handler

import (
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StokHandler struct {
	service service.StockService
}

func NewStokHandler(s service.StockService) *StokHandler {
	return &StokHandler{service: s}
}

// ListByLokasi GET /api/v1/stok-tabung/lokasi/:lokasi
// Query: status, search, sort_by, sort_order, page, limit
func (h *StokHandler) ListByLokasi(c *fiber.Ctx) error {
	resp, err := h.service.ListByLokasi(c.UserContext(), service.StokListRequest{
		Lokasi:    c.Params("lokasi"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Ringkasan GET /api/v1/stok-tabung/ringkasan
func (h *StokHandler) Ringkasan(c *fiber.Ctx) error {
	resp, err := h.service.Ringkasan(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Cari GET /api/v1/stok-tabung/cari/:kode_tabung
func (h *StokHandler) Cari(c *fiber.Ctx) error {
	resp, err := h.service.Cari(c.UserContext(), c.Params("kode_tabung"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// CekTabung GET /api/v1/cek-tabung/:kode_tabung
func (h *StokHandler) CekTabung(c *fiber.Ctx) error {
	resp, err := h.service.CekTabung(c.UserContext(), c.Params("kode_tabung"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Gudang GET /api/v1/gudang/:kode_gudang
func (h *StokHandler) Gudang(c *fiber.Ctx) error {
	resp, err := h.service.Gudang(c.UserContext(), c.Params("kode_gudang"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
