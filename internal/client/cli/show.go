package cli

import (
	"context"
	"fmt"
)

// Select marks a cached report as the one detail commands operate on.
func (a *App) Select(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	text, err := GetSimpleText(a.reader, "Enter report id", a.out)
	if err != nil {
		return err
	}
	id, err := parseID(text)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	if err := a.cache.Select(id); err != nil {
		fmt.Fprintf(a.out, "Report %d is not in the current list. Run \"list\" first.\n", id)
		return err
	}
	fmt.Fprintf(a.out, "Report %d selected.\n", id)
	return nil
}

// Show prints the selected report in full, including the analysis text and
// the doctor's notes.
func (a *App) Show(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	r, ok := a.cache.Selected()
	if !ok {
		fmt.Fprintln(a.out, "No report selected. Use \"select\" first.")
		return nil
	}

	fmt.Fprintf(a.out, "Report [%d] %s\n", r.ID, r.ReportName)
	fmt.Fprintf(a.out, "Uploaded: %s\n", r.UploadDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Status:   %s\n", approvalLabel(r))
	if r.AnalysisResult != "" {
		fmt.Fprintf(a.out, "\nAnalysis:\n%s\n", r.AnalysisResult)
	}
	if r.DoctorNotes != "" {
		fmt.Fprintf(a.out, "\nDoctor's notes:\n%s\n", r.DoctorNotes)
	}
	return nil
}
