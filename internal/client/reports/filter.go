package reports

import (
	"strings"
	"time"

	"github.com/dharitri-health/portal-cli/internal/client/models"
)

// Filter narrows a doctor's all-patients listing. Zero values mean no
// constraint. Name matches the patient's username case-insensitively as a
// substring; the date bounds are inclusive.
type Filter struct {
	Name  string
	Start time.Time
	End   time.Time
}

// FilterPatientReports applies f to list and returns the matching rows,
// order preserved.
func FilterPatientReports(list []models.PatientReport, f Filter) []models.PatientReport {
	name := strings.ToLower(f.Name)

	out := make([]models.PatientReport, 0, len(list))
	for _, r := range list {
		if name != "" && !strings.Contains(strings.ToLower(r.Username), name) {
			continue
		}
		if !f.Start.IsZero() && r.UploadDate.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && r.UploadDate.After(f.End) {
			continue
		}
		out = append(out, r)
	}
	return out
}
