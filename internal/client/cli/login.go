package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharitri-health/portal-cli/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, string(password)); err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			fmt.Fprintln(a.out, "Invalid username or password.")
		case errors.Is(err, common.ErrUnavailable):
			fmt.Fprintln(a.out, "Could not reach the server. Try again later.")
		default:
			fmt.Fprintln(a.out, userMessage(err))
		}
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", a.session.Username(), a.session.Role())

	// First load of the session's reports. A failure here is not fatal, the
	// user can retry with "list".
	if err := a.cache.Refresh(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not load your reports:", userMessage(err))
		return nil
	}
	fmt.Fprintf(a.out, "%d report(s) loaded, %d pending review\n", a.cache.Len(), a.cache.PendingCount())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
