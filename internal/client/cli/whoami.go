package cli

import (
	"context"
	"fmt"
)

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s), session %s, %s\n",
		a.session.Username(), a.session.Role(), a.session.Status(), a.currentMode())
	return nil
}
