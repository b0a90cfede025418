package pagination

import (
	"math"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

// New menormalkan page/limit dari query string.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Meta struct {
	CurrentPage  int   `json:"current_page"`
	PerPage      int   `json:"per_page"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
	HasNextPage  bool  `json:"has_next_page"`
	HasPrevPage  bool  `json:"has_prev_page"`
}

func NewMeta(p Params, total int64) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalRecords: total,
		TotalPages:   totalPages,
		HasNextPage:  p.Page < totalPages,
		HasPrevPage:  p.Page > 1,
	}
}

// Sort membatasi kolom ORDER BY ke allow-list, nilai lain jatuh ke default.
type Sort struct {
	Allowed      []string
	DefaultField string
	DefaultOrder string
}

// Clause returns "<column> ASC|DESC" built only from allow-listed columns.
func (s Sort) Clause(field, order string) string {
	col := s.DefaultField
	for _, a := range s.Allowed {
		if a == field {
			col = a
			break
		}
	}

	dir := strings.ToUpper(strings.TrimSpace(order))
	if dir != "ASC" && dir != "DESC" {
		dir = strings.ToUpper(s.DefaultOrder)
		if dir != "ASC" {
			dir = "DESC"
		}
	}
	return col + " " + dir
}
