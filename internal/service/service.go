package service

import (
	"database/sql"
	"errors"
	"sort"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/validator"

	"gorm.io/gorm"
)

// Transactor runs fc inside one database transaction. *gorm.DB satisfies it.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type EventPublisher interface {
	Publish(eventType string, data interface{})
}

type IDGenerator interface {
	NextTrxID() string
	NextBastID() string
}

// Actor adalah principal terautentikasi yang melakukan operasi.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Status hasil operasi tulis
const (
	ResultCommitted = "committed"
	ResultPartial   = "partial"
)

const (
	EventStokUpdate       = "stok_update"
	EventActivityRecorded = "activity_recorded"
	EventBillingRecorded  = "billing_recorded"
)

const (
	TanggalLayout = "02/01/2006"
	DateLayout    = "2006-01-02"
)

var jakartaLoc *time.Location

func init() {
	var err error
	jakartaLoc, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		jakartaLoc = time.FixedZone("WIB", 7*60*60)
	}
}

// StokResult adalah hasil upsert stok satu tabung.
type StokResult struct {
	KodeTabung string           `json:"kode_tabung"`
	Action     model.StokAction `json:"action"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
}

type StokSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

func summarize(results []StokResult) StokSummary {
	summary := StokSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func validateRequest(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(validator.Message(errs)).WithDetail("errors", errs)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// lookupError: record tidak ada -> 404, selain itu StorageError.
func lookupError(err error, notFoundMsg string) error {
	if isNotFound(err) {
		return apperror.NotFound(notFoundMsg)
	}
	return apperror.Storage("Gagal membaca data", err)
}

// dateOnly memotong waktu ke tanggal kalender WIB.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.In(jakartaLoc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, apperror.Validation("Format tanggal harus YYYY-MM-DD").WithDetail("value", value)
	}
	return &t, nil
}

func sortedCopy(kodes []string) []string {
	out := append([]string(nil), kodes...)
	sort.Strings(out)
	return out
}
