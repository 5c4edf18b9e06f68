package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dharitri-health/portal-cli/internal/client/reports"
)

const filterDateLayout = "2006-01-02"

// All lists every patient's reports with optional name/date filters, the
// doctor dashboard's cross-patient view. Filtering happens client-side on
// the fetched rows.
func (a *App) All(ctx context.Context) error {
	if !a.isDoctor() {
		fmt.Fprintln(a.out, "Only doctors can list all patient reports.")
		return nil
	}

	filter, err := a.promptReportFilter()
	if err != nil {
		return err
	}

	list, err := a.client.AllReports(ctx)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}

	matched := reports.FilterPatientReports(list, filter)
	if len(matched) == 0 {
		fmt.Fprintln(a.out, "No reports match.")
		return nil
	}

	for _, r := range matched {
		status := "pending"
		if r.DoctorApproval {
			status = "approved"
		}
		fmt.Fprintf(a.out, "  [%d] %s  patient %s <%s>  %s  (%s)\n",
			r.ID, r.ReportName, r.Username, r.Email,
			r.UploadDate.Format("2006-01-02 15:04"), status)
	}
	fmt.Fprintf(a.out, "%d of %d report(s) shown\n", len(matched), len(list))
	return nil
}

func (a *App) promptReportFilter() (reports.Filter, error) {
	var filter reports.Filter

	name, err := GetSimpleText(a.reader, "Filter by patient name (empty for all)", a.out)
	if err != nil {
		return filter, err
	}
	filter.Name = name

	start, err := a.promptFilterDate("From date (YYYY-MM-DD, empty for no lower bound)")
	if err != nil {
		return filter, err
	}
	filter.Start = start

	end, err := a.promptFilterDate("To date (YYYY-MM-DD, empty for no upper bound)")
	if err != nil {
		return filter, err
	}
	filter.End = end

	return filter, nil
}

func (a *App) promptFilterDate(prompt string) (time.Time, error) {
	text, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return time.Time{}, err
	}
	if text == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(filterDateLayout, text)
	if err != nil {
		fmt.Fprintf(a.out, "%q is not a valid date, expected YYYY-MM-DD\n", text)
		return time.Time{}, err
	}
	return date, nil
}
