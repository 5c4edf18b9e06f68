package cli

import (
	"context"
	"fmt"
)

// List refreshes the report collection and prints it with derived counts.
// When the refresh fails the previously cached entries are still shown.
func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	if err := a.cache.Refresh(ctx); err != nil {
		fmt.Fprintln(a.out, userMessage(err))
	}

	entries := a.cache.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No reports yet. Use \"upload\" to analyze one.")
		return nil
	}

	for _, r := range entries {
		a.printReportLine(r)
	}
	fmt.Fprintf(a.out, "%d report(s): %d pending, %d approved\n",
		len(entries), a.cache.PendingCount(), a.cache.ApprovedCount())
	return nil
}

// Pending lists reports across patients that still await a doctor's review.
func (a *App) Pending(ctx context.Context) error {
	if !a.isDoctor() {
		fmt.Fprintln(a.out, "Only doctors can list pending reviews.")
		return nil
	}

	list, err := a.client.PendingReports(ctx)
	if err != nil {
		a.reportErr(ctx, err)
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No reports are waiting for review.")
		return nil
	}
	for _, r := range list {
		fmt.Fprintf(a.out, "  [%d] %s  patient %s  %s\n",
			r.ID, r.ReportName, r.UserID, r.UploadDate.Format("2006-01-02 15:04"))
	}
	return nil
}
