package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Upload reads a PDF from disk and sends it for analysis. Size and type are
// validated by the cache before anything touches the network.
func (a *App) Upload(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	}

	path, err := GetSimpleText(a.reader, "Enter path to the PDF file", a.out)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Could not read %s: %v\n", path, err)
		return err
	}

	fmt.Fprintln(a.out, "Analyzing, this can take a while...")
	report, err := a.cache.Upload(ctx, filepath.Base(path), content)
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return err
	}

	fmt.Fprintf(a.out, "Report %d analyzed.\n\n%s\n", report.ID, report.AnalysisResult)
	return nil
}
