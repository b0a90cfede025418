package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	service service.HistoryService
}

func NewHistoryHandler(s service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: s}
}

func historyRequest(c *fiber.Ctx) service.HistoryRequest {
	return service.HistoryRequest{
		Search:        c.Query("search"),
		Status:        c.Query("status"),
		Activity:      c.Query("activity"),
		KodeTabung:    c.Query("kode_tabung"),
		Lokasi:        c.Query("lokasi"),
		TanggalDari:   c.Query("tanggal_dari"),
		TanggalSampai: c.Query("tanggal_sampai"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 10),
	}
}

// ListAktivitas GET /api/v1/aktivitas-tabung
func (h *HistoryHandler) ListAktivitas(c *fiber.Ctx) error {
	resp, err := h.service.ListAktivitas(c.UserContext(), historyRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// AktivitasDetail GET /api/v1/aktivitas-tabung/:id
func (h *HistoryHandler) AktivitasDetail(c *fiber.Ctx) error {
	aktivitas, err := h.service.AktivitasDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": aktivitas})
}

// AktivitasStats GET /api/v1/aktivitas-tabung/statistik/summary
func (h *HistoryHandler) AktivitasStats(c *fiber.Ctx) error {
	stats, err := h.service.AktivitasStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ExportAktivitas GET /api/v1/aktivitas-tabung/export?format=csv|json
func (h *HistoryHandler) ExportAktivitas(c *fiber.Ctx) error {
	format, err := exportFormat(c)
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.service.ExportAktivitas(c.UserContext(), historyRequest(c))
	if err != nil {
		return respondError(c, err)
	}

	filename := "aktivitas_tabung_" + time.Now().Format("20060102_150405")
	if format == "json" {
		return sendJSONExport(c, filename, rows, len(rows))
	}

	records := [][]string{{"id", "waktu", "tanggal", "nama_aktivitas", "dari", "tujuan", "status", "total_tabung", "tabung", "nama_petugas", "keterangan"}}
	for _, a := range rows {
		records = append(records, []string{
			a.ID.String(),
			a.Waktu.Format(time.RFC3339),
			a.Tanggal,
			a.NamaAktivitas,
			a.Dari,
			a.Tujuan,
			string(a.Status),
			strconv.Itoa(a.TotalTabung),
			strings.Join(a.Tabung, ";"),
			a.NamaPetugas,
			a.Keterangan,
		})
	}
	return sendCSV(c, filename, records)
}

// ListVolume GET /api/v1/history-volume/all
func (h *HistoryHandler) ListVolume(c *fiber.Ctx) error {
	resp, err := h.service.ListVolume(c.UserContext(), historyRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// VolumeDetail GET /api/v1/history-volume/detail/:id
func (h *HistoryHandler) VolumeDetail(c *fiber.Ctx) error {
	resp, err := h.service.VolumeDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// VolumeStats GET /api/v1/history-volume/statistik
func (h *HistoryHandler) VolumeStats(c *fiber.Ctx) error {
	stats, err := h.service.VolumeStats(c.UserContext(), historyRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ExportVolume GET /api/v1/history-volume/export?format=csv|json
func (h *HistoryHandler) ExportVolume(c *fiber.Ctx) error {
	format, err := exportFormat(c)
	if err != nil {
		return respondError(c, err)
	}
	rows, err := h.service.ExportVolume(c.UserContext(), historyRequest(c))
	if err != nil {
		return respondError(c, err)
	}

	filename := "history_volume_" + time.Now().Format("20060102_150405")
	if format == "json" {
		return sendJSONExport(c, filename, rows, len(rows))
	}

	records := [][]string{{"id", "tanggal", "lokasi", "nama", "total_tabung", "total_volume", "tabung", "keterangan"}}
	for _, v := range rows {
		records = append(records, []string{
			v.ID.String(),
			v.Tanggal.Format(service.DateLayout),
			v.Lokasi,
			v.Nama,
			strconv.Itoa(len(v.Tabung)),
			v.TotalVolume.StringFixed(2),
			volumeList(v.Tabung),
			v.Keterangan,
		})
	}
	return sendCSV(c, filename, records)
}

func volumeList(items []model.TabungVolume) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.KodeTabung+":"+item.Volume.StringFixed(2))
	}
	return strings.Join(parts, ";")
}

func exportFormat(c *fiber.Ctx) (string, error) {
	format := strings.ToLower(c.Query("format", "csv"))
	if format != "csv" && format != "json" {
		return "", apperror.Validation("format harus csv atau json")
	}
	return format, nil
}

func sendCSV(c *fiber.Ctx, filename string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return respondError(c, apperror.Storage("Gagal membuat CSV", err))
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
	return c.Send(buf.Bytes())
}

func sendJSONExport(c *fiber.Ctx, filename string, data interface{}, total int) error {
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, filename))
	return c.JSON(fiber.Map{
		"data":        data,
		"total":       total,
		"exported_at": time.Now(),
	})
}
