package handler

import (
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	ledger      service.LedgerService
	fulfillment service.FulfillmentService
}

func NewActivityHandler(ledger service.LedgerService, fulfillment service.FulfillmentService) *ActivityHandler {
	return &ActivityHandler{ledger: ledger, fulfillment: fulfillment}
}

// RecordActivity POST /api/v1/tabung_activity
func (h *ActivityHandler) RecordActivity(c *fiber.Ctx) error {
	var req service.ActivityRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.ledger.RecordActivity(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// RecordWithBilling POST /api/v1/aktivitas-transaksi
// Tagihan gagal setelah ledger commit -> 200 dengan status partial.
func (h *ActivityHandler) RecordWithBilling(c *fiber.Ctx) error {
	var req service.ActivityRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.fulfillment.Record(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	if result.Partial() {
		return c.Status(fiber.StatusOK).JSON(result)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// RecordReturn POST /api/v1/laporan_pelanggan
func (h *ActivityHandler) RecordReturn(c *fiber.Ctx) error {
	var req service.ReturnRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.ledger.RecordCustomerReturn(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// RecordVolume POST /api/v1/volume/simpan
func (h *ActivityHandler) RecordVolume(c *fiber.Ctx) error {
	var req service.VolumeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.ledger.RecordVolume(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// RecordAudit POST /api/v1/audit/simpan
func (h *ActivityHandler) RecordAudit(c *fiber.Ctx) error {
	var req service.AuditRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.ledger.RecordAudit(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// SearchAudit GET /api/v1/audit/search/:kode_tabung
func (h *ActivityHandler) SearchAudit(c *fiber.Ctx) error {
	audits, err := h.ledger.SearchAudit(c.UserContext(), c.Params("kode_tabung"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": audits, "total": len(audits)})
}
