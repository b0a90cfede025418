package service

import (
	"context"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/repository"
)

type DashboardStats struct {
	TotalTabung      int64                      `json:"total_tabung"`
	TotalPelanggan   int64                      `json:"total_pelanggan"`
	AktivitasHariIni int64                      `json:"aktivitas_hari_ini"`
	Stok             repository.LokasiSummary   `json:"stok"`
	DistribusiLokasi []repository.LokasiSummary `json:"distribusi_lokasi"`
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	tabungRepo    repository.TabungRepository
	stokRepo      repository.StokRepository
	pelangganRepo repository.PelangganRepository
	aktivitasRepo repository.AktivitasRepository
	now           func() time.Time
}

func NewDashboardService(tabungRepo repository.TabungRepository, stokRepo repository.StokRepository, pelangganRepo repository.PelangganRepository, aktivitasRepo repository.AktivitasRepository) DashboardService {
	return &dashboardService{
		tabungRepo:    tabungRepo,
		stokRepo:      stokRepo,
		pelangganRepo: pelangganRepo,
		aktivitasRepo: aktivitasRepo,
		now:           time.Now,
	}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalTabung, err = s.tabungRepo.Count(ctx); err != nil {
		return nil, apperror.Storage("Gagal menghitung tabung", err)
	}
	if stats.TotalPelanggan, err = s.pelangganRepo.Count(ctx); err != nil {
		return nil, apperror.Storage("Gagal menghitung pelanggan", err)
	}
	today := s.now().In(jakartaLoc).Format(TanggalLayout)
	if stats.AktivitasHariIni, err = s.aktivitasRepo.CountByTanggal(ctx, today); err != nil {
		return nil, apperror.Storage("Gagal menghitung aktivitas", err)
	}

	perLokasi, err := s.stokRepo.SummaryPerLokasi(ctx)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca distribusi stok", err)
	}
	stats.Stok = summarizeLokasi(perLokasi)
	stats.DistribusiLokasi = perLokasi
	return stats, nil
}
