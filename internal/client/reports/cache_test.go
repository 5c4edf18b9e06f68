package reports

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/common"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

// ---- fake client ----

type fakeClient struct {
	mu           sync.Mutex
	listCalls    int
	analyzeCalls int
	updateCalls  int

	ListFn    func(ctx context.Context) ([]models.Report, error)
	AnalyzeFn func(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error)
	UpdateFn  func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error)
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) SetAccessToken(string) {}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	return nil, nil
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) error { return nil }

func (f *fakeClient) ListReports(ctx context.Context) ([]models.Report, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return nil, nil
}

func (f *fakeClient) PendingReports(ctx context.Context) ([]models.Report, error) { return nil, nil }

func (f *fakeClient) AllReports(ctx context.Context) ([]models.PatientReport, error) {
	return nil, nil
}

func (f *fakeClient) AnalyzeReport(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.mu.Unlock()
	if f.AnalyzeFn != nil {
		return f.AnalyzeFn(ctx, filename, content)
	}
	return &models.AnalyzeResult{}, nil
}

func (f *fakeClient) UpdateReport(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, id, req)
	}
	return nil, nil
}

func (f *fakeClient) DietConsult(ctx context.Context, q models.DietQuestion) (*models.DietAnswer, error) {
	return nil, nil
}

func (f *fakeClient) Chat(ctx context.Context, query string) (string, error) { return "", nil }

func (f *fakeClient) Health(ctx context.Context) error { return nil }

func (f *fakeClient) calls() (list, analyze, update int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.analyzeCalls, f.updateCalls
}

var _ api.Client = (*fakeClient)(nil)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func report(id int64, approved bool) models.Report {
	return models.Report{
		ID:             id,
		UserID:         "alice",
		ReportName:     "scan.pdf",
		UploadDate:     models.NewPortalTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		AnalysisResult: "analysis",
		DoctorApproval: approved,
	}
}

func primedCache(t *testing.T, f *fakeClient, entries ...models.Report) *Cache {
	t.Helper()
	c := NewCache(f, testLogger())
	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		return entries, nil
	}
	require.NoError(t, c.Refresh(context.Background()))
	f.ListFn = nil
	return c
}

// ---- refresh ----

func TestRefresh_ReplacesEntries(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false), report(2, true))

	require.Equal(t, 2, c.Len())

	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		return []models.Report{report(3, false)}, nil
	}
	require.NoError(t, c.Refresh(context.Background()))

	entries := c.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, int64(3), entries[0].ID)
}

func TestRefresh_FailureKeepsPreviousEntries(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		return nil, common.ErrUnavailable
	}
	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)

	require.Equal(t, 1, c.Len())
	require.Equal(t, int64(1), c.Entries()[0].ID)
}

func TestRefresh_SupersededCompletionIsDiscarded(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	entered := make(chan struct{})
	release := make(chan struct{})
	first := true

	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		f.mu.Lock()
		wasFirst := first
		first = false
		f.mu.Unlock()
		if wasFirst {
			close(entered)
			<-release
			return []models.Report{report(1, false)}, nil // stale
		}
		return []models.Report{report(2, false)}, nil // fresh
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	// second refresh supersedes the first and completes immediately
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, int64(2), c.Entries()[0].ID)

	close(release)
	require.NoError(t, <-done)

	// the stale completion must not have overwritten the newer data
	entries := c.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, int64(2), entries[0].ID)
}

func TestRefresh_SupersededFailureIsSilent(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	entered := make(chan struct{})
	release := make(chan struct{})
	first := true

	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		f.mu.Lock()
		wasFirst := first
		first = false
		f.mu.Unlock()
		if wasFirst {
			close(entered)
			<-release
			return nil, fmt.Errorf("read: %w", common.ErrUnavailable) // stale and failed
		}
		return []models.Report{report(2, false)}, nil // fresh
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	require.NoError(t, c.Refresh(context.Background()))

	close(release)
	// the failure belongs to data the user no longer sees; no error surfaces
	require.NoError(t, <-done)
	require.Equal(t, int64(2), c.Entries()[0].ID)
}

func TestRefresh_DropsSelectionOfVanishedReport(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false), report(2, false))

	require.NoError(t, c.Select(2))
	_, ok := c.Selected()
	require.True(t, ok)

	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		return []models.Report{report(1, false)}, nil
	}
	require.NoError(t, c.Refresh(context.Background()))

	_, ok = c.Selected()
	require.False(t, ok)
}

// ---- upload ----

func TestUpload_RejectsOversizedFileLocally(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	big := bytes.Repeat([]byte{0x1}, common.MaxUploadSize+1)
	_, err := c.Upload(context.Background(), "big.pdf", big)
	require.ErrorIs(t, err, common.ErrFileTooLarge)

	_, analyze, _ := f.calls()
	require.Zero(t, analyze, "no network call may be made")
	require.Equal(t, 1, c.Len())
}

func TestUpload_RejectsUnsupportedTypeLocally(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	_, err := c.Upload(context.Background(), "notes.docx", []byte("hi"))
	require.ErrorIs(t, err, common.ErrFileTypeNotAllowed)

	_, analyze, _ := f.calls()
	require.Zero(t, analyze)
}

func TestUpload_PrependsAnalyzedReport(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	f.AnalyzeFn = func(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error) {
		return &models.AnalyzeResult{ReportID: 9, Analysis: "new analysis"}, nil
	}

	created, err := c.Upload(context.Background(), "fresh.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, int64(9), created.ID)

	// an immediately-following read sees the new entry first
	entries := c.Entries()
	require.Equal(t, int64(9), entries[0].ID)
	require.Equal(t, "new analysis", entries[0].AnalysisResult)
	require.Equal(t, int64(1), entries[1].ID)
}

func TestUpload_ThenRefreshRoundTrip(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	f.AnalyzeFn = func(ctx context.Context, filename string, content []byte) (*models.AnalyzeResult, error) {
		return &models.AnalyzeResult{ReportID: 5, Analysis: "stable analysis"}, nil
	}

	created, err := c.Upload(context.Background(), "doc.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	server := report(5, false)
	server.AnalysisResult = "stable analysis"
	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		return []models.Report{server}, nil
	}
	require.NoError(t, c.Refresh(context.Background()))

	got, ok := c.Get(5)
	require.True(t, ok)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.AnalysisResult, got.AnalysisResult)
}

// ---- approval workflow ----

func TestApprove_UnknownIDFailsWithoutRequest(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	err := c.Approve(context.Background(), 99, "n/a")
	require.ErrorIs(t, err, common.ErrPreconditionFailed)

	_, _, update := f.calls()
	require.Zero(t, update)
	require.Equal(t, 1, c.Len())
}

func TestApprove_AlreadyApprovedFails(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, true))

	err := c.Approve(context.Background(), 1, "again")
	require.ErrorIs(t, err, common.ErrPreconditionFailed)

	_, _, update := f.calls()
	require.Zero(t, update)
}

func TestApprove_CommitsServerCopy(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		confirmed := report(id, true)
		confirmed.DoctorNotes = "reviewed: " + req.Notes
		return &confirmed, nil
	}

	require.NoError(t, c.Approve(context.Background(), 1, "all clear"))

	got, ok := c.Get(1)
	require.True(t, ok)
	require.True(t, got.DoctorApproval)
	require.False(t, got.PendingCommit, "server copy must replace the optimistic entry")
	require.Equal(t, "reviewed: all clear", got.DoctorNotes, "server is authoritative for notes")
}

func TestApprove_FailureRollsBackOptimisticState(t *testing.T) {
	f := &fakeClient{}
	prior := report(1, false)
	prior.DoctorNotes = "original"
	c := primedCache(t, f, prior)

	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		return nil, &api.ServerError{Status: 500, Detail: "boom"}
	}

	err := c.Approve(context.Background(), 1, "notes")
	require.Error(t, err)

	got, ok := c.Get(1)
	require.True(t, ok)
	require.False(t, got.DoctorApproval, "optimistic approval must be rolled back")
	require.False(t, got.PendingCommit)
	require.Equal(t, "original", got.DoctorNotes)
}

func TestApprove_ConcurrentSameIDConflicts(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	entered := make(chan struct{})
	release := make(chan struct{})
	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		close(entered)
		<-release
		confirmed := report(id, true)
		return &confirmed, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Approve(context.Background(), 1, "first") }()
	<-entered

	// while the first approval is in flight, the entry reads as approved
	got, ok := c.Get(1)
	require.True(t, ok)
	require.True(t, got.DoctorApproval)
	require.True(t, got.PendingCommit)

	err := c.Approve(context.Background(), 1, "second")
	require.ErrorIs(t, err, common.ErrConflictInProgress)

	close(release)
	require.NoError(t, <-done)

	_, _, update := f.calls()
	require.Equal(t, 1, update, "exactly one request may reach the backend")
}

func TestApprove_UnauthorizedEscalates(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	escalated := false
	c.SetAuthErrorHandler(func(ctx context.Context) {
		escalated = true
		c.Reset()
	})

	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		return nil, common.ErrUnauthorized
	}

	err := c.Approve(context.Background(), 1, "notes")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.True(t, escalated)
	require.Zero(t, c.Len())
}

// ---- derived counts ----

func TestCounts_AreDerivedFromEntries(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false), report(2, true), report(3, false))

	require.Equal(t, 2, c.PendingCount())
	require.Equal(t, 1, c.ApprovedCount())
	require.Equal(t, c.Len(), c.PendingCount()+c.ApprovedCount())

	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		confirmed := report(id, true)
		return &confirmed, nil
	}
	require.NoError(t, c.Approve(context.Background(), 1, "ok"))

	require.Equal(t, 1, c.PendingCount())
	require.Equal(t, 2, c.ApprovedCount())
	require.Equal(t, c.Len(), c.PendingCount()+c.ApprovedCount())
}

// ---- session boundaries ----

func TestReset_DiscardsEntriesAndSelection(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))
	require.NoError(t, c.Select(1))

	c.Reset()

	require.Zero(t, c.Len())
	_, ok := c.Selected()
	require.False(t, ok)
}

func TestReset_IgnoresLateRefreshCompletion(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	entered := make(chan struct{})
	release := make(chan struct{})
	f.ListFn = func(ctx context.Context) ([]models.Report, error) {
		close(entered)
		<-release
		return []models.Report{report(1, false)}, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	c.Reset() // logout while the refresh is in flight
	close(release)
	require.NoError(t, <-done)

	require.Zero(t, c.Len(), "data from the previous session must not appear")
}

func TestReset_IgnoresLateApproveCompletion(t *testing.T) {
	f := &fakeClient{}
	c := primedCache(t, f, report(1, false))

	entered := make(chan struct{})
	release := make(chan struct{})
	f.UpdateFn = func(ctx context.Context, id int64, req models.UpdateReportRequest) (*models.Report, error) {
		close(entered)
		<-release
		confirmed := report(id, true)
		return &confirmed, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Approve(context.Background(), 1, "notes") }()
	<-entered

	c.Reset()
	close(release)
	require.NoError(t, <-done)

	require.Zero(t, c.Len())
}

func TestSelect_UnknownIDFails(t *testing.T) {
	f := &fakeClient{}
	c := NewCache(f, testLogger())

	err := c.Select(7)
	require.ErrorIs(t, err, common.ErrPreconditionFailed)
}
