// Package api is the HTTP gateway to the health-portal backend. It owns
// request construction, bearer-token attachment and error normalization;
// everything above it works with models and sentinel errors only.
package api

import (
	"context"

	"github.com/dharitri-health/portal-cli/internal/client/models"
)

// Client is the operation surface of the backend. The concrete
// implementation is HTTPClient; tests substitute fakes.
type Client interface {
	Close() error

	// SetAccessToken installs the bearer credential used for authenticated
	// calls. An empty string clears it. Login sets it implicitly on success.
	SetAccessToken(token string)

	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
	Register(ctx context.Context, reg models.Registration) error

	ListReports(ctx context.Context) ([]models.Report, error)
	PendingReports(ctx context.Context) ([]models.Report, error)
	AllReports(ctx context.Context) ([]models.PatientReport, error)
	AnalyzeReport(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error)
	UpdateReport(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error)

	DietConsult(ctx context.Context, q models.DietQuestion) (*models.DietAnswer, error)
	Chat(ctx context.Context, query string) (string, error)

	Health(ctx context.Context) error
}
