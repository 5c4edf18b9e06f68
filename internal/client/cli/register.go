package cli

import (
	"context"
	"fmt"

	"github.com/dharitri-health/portal-cli/internal/client/models"
)

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	role, err := GetSimpleText(a.reader, "Enter role (Patient/Doctor, default Patient)", a.out)
	if err != nil {
		return err
	}
	if role == "" {
		role = "Patient"
	}

	reg := models.Registration{
		Username: username,
		Email:    email,
		Password: string(password),
		Role:     role,
	}

	if err := a.session.Register(ctx, reg); err != nil {
		a.reportErr(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Registration successful. You can now log in.")
	return nil
}
