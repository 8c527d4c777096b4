package backoffice

import (
	"context"
	"net/http"
)

// DashboardStats are the counters shown on the back-office dashboard.
type DashboardStats struct {
	EnrollmentsTotal     int            `json:"inscriptions_total"`
	EnrollmentsPending   int            `json:"inscriptions_en_attente"`
	EnrollmentsThisMonth int            `json:"inscriptions_ce_mois"`
	EnrollmentsBySection map[string]int `json:"inscriptions_par_section,omitempty"`
	NewsPublished        int            `json:"actualites_publiees"`
	NewsDrafts           int            `json:"actualites_brouillons"`
	UnreadMessages       int            `json:"messages_non_lus"`
	GalleryPhotos        int            `json:"photos_galerie"`
}

// DashboardClient is the specialized client for the dashboard.
type DashboardClient interface {
	Stats(context.Context) (DashboardStats, error)
}

type dashboardClient struct {
	resourceClient
}

func (d *dashboardClient) Stats(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{}
	_, err := d.do(ctx, http.MethodGet, "admin/dashboard", nil, &stats)
	return stats, err
}
