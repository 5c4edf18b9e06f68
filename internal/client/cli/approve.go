package cli

import (
	"context"
	"fmt"
)

// Approve records a doctor's review: notes plus the approved flag. The cache
// applies the change optimistically and rolls back if the server rejects it.
func (a *App) Approve(ctx context.Context) error {
	if !a.isDoctor() {
		fmt.Fprintln(a.out, "Only doctors can approve reports.")
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

	notes, err := GetMultiline(a.reader, "Enter review notes", a.out)
	if err != nil {
		return err
	}

	if err := a.cache.Approve(ctx, id, notes); err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return err
	}

	fmt.Fprintf(a.out, "Report %d approved.\n", id)
	return nil
}
