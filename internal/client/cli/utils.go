package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/common"
)

// userMessage translates an error into the short text shown to the user.
// Raw status codes and wrapped error chains stay in the logs.
func userMessage(err error) string {
	var srv *api.ServerError
	switch {
	case errors.Is(err, common.ErrUnavailable):
		return "The server is unreachable. Check your connection and try again."
	case errors.Is(err, common.ErrFileTooLarge):
		return "The file is larger than the 10 MiB upload limit."
	case errors.Is(err, common.ErrFileTypeNotAllowed):
		return "Only PDF documents can be analyzed."
	case errors.Is(err, common.ErrConflictInProgress):
		return "An update for this report is already in progress. Try again in a moment."
	case errors.Is(err, common.ErrPreconditionFailed):
		return "The report is not in a state that allows this action."
	case errors.Is(err, common.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.As(err, &srv):
		if srv.Detail != "" {
			return srv.Detail
		}
		return "The server could not process the request."
	}
	return "Something went wrong. Please try again."
}

// reportErr prints the user-facing message for err and escalates a 401 to
// the session manager. Components that own their requests (the report cache,
// the diet service) escalate themselves; this is for direct gateway calls.
func (a *App) reportErr(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, common.ErrUnauthorized) {
		a.session.HandleAuthError(ctx)
	}
	fmt.Fprintln(a.out, userMessage(err))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid report id", s)
	}
	return id, nil
}

func approvalLabel(r models.Report) string {
	switch {
	case r.PendingCommit:
		return "approving..."
	case r.DoctorApproval:
		return "approved"
	default:
		return "pending"
	}
}

func (a *App) printReportLine(r models.Report) {
	fmt.Fprintf(a.out, "  [%d] %s  %s  (%s)\n",
		r.ID, r.ReportName, r.UploadDate.Format("2006-01-02 15:04"), approvalLabel(r))
}
