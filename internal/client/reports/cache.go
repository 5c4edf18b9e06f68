// Package reports keeps the in-memory report collection for the current
// session and owns the approval workflow. The backend stays authoritative:
// refreshes replace the whole collection, approvals are committed with the
// server's copy or rolled back, and aggregate counts are always derived
// from the entries rather than stored.
package reports

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/common"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

// Cache is the report collection for one session.
//
// Concurrency guards:
//   - epoch marks the session generation; Reset bumps it and any completion
//     carrying an old epoch is discarded, so responses that land after a
//     logout can never touch the next session's data.
//   - issuedSeq/appliedSeq order refresh completions; a refresh that
//     finishes after a newer one has already landed is discarded.
//   - inflight serializes approvals per report id.
type Cache struct {
	client api.Client
	logger logging.Logger

	// onAuthError escalates a 401 to the session manager. Called without
	// the cache lock held, since the resulting logout calls back into Reset.
	onAuthError func(context.Context)

	mu         sync.Mutex
	entries    []models.Report
	selected   *int64
	epoch      uint64
	issuedSeq  uint64
	appliedSeq uint64
	inflight   map[int64]struct{}
}

func NewCache(client api.Client, logger logging.Logger) *Cache {
	return &Cache{
		client:   client,
		logger:   logger,
		inflight: make(map[int64]struct{}),
	}
}

// SetAuthErrorHandler installs the 401 escalation target. Must be called
// during wiring, before any operation runs.
func (c *Cache) SetAuthErrorHandler(fn func(context.Context)) {
	c.onAuthError = fn
}

// Reset discards all session state: entries, selection and in-flight
// markers. Responses still in flight for the previous session are ignored
// when they complete.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.epoch++
	c.entries = nil
	c.selected = nil
	c.inflight = make(map[int64]struct{})
	c.mu.Unlock()
}

// Entries returns a copy of the current collection, server order preserved.
func (c *Cache) Entries() []models.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.entries)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the cached report with the given id.
func (c *Cache) Get(id int64) (models.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.entries[i], true
	}
	return models.Report{}, false
}

// Select marks a cached report for detail display. Selecting an id that is
// not in the cache fails with ErrPreconditionFailed.
func (c *Cache) Select(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(id) < 0 {
		return fmt.Errorf("report %d: %w", id, common.ErrPreconditionFailed)
	}
	c.selected = &id
	return nil
}

func (c *Cache) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
}

// Selected returns the currently selected report, revalidated against the
// collection: a selection whose report has disappeared reads as none.
func (c *Cache) Selected() (models.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return models.Report{}, false
	}
	if i := c.indexLocked(*c.selected); i >= 0 {
		return c.entries[i], true
	}
	return models.Report{}, false
}

// PendingCount and ApprovedCount are derived on every read; the cache never
// maintains counters that could drift from the entries.
func (c *Cache) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.entries {
		if !r.DoctorApproval {
			n++
		}
	}
	return n
}

func (c *Cache) ApprovedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.entries {
		if r.DoctorApproval {
			n++
		}
	}
	return n
}

// Refresh fetches the full report list and replaces the collection
// atomically. A failed refresh leaves the previous entries untouched. A
// completion that is superseded by a newer refresh, or that belongs to an
// ended session, is discarded silently.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issuedSeq++
	seq := c.issuedSeq
	epoch := c.epoch
	c.mu.Unlock()

	list, err := c.client.ListReports(ctx)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}
	// Supersession is decided before the error branch: a stale completion
	// that failed after a newer refresh already landed must stay silent, the
	// user is looking at newer data. A 401 still escalates.
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		c.escalateAuth(ctx, err)
		c.logger.Debug(ctx, "discarding superseded refresh", "seq", seq, "failed", err != nil)
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.escalateAuth(ctx, err)
		return fmt.Errorf("refreshing reports: %w", err)
	}
	c.appliedSeq = seq
	c.entries = list
	c.revalidateSelectionLocked()
	c.mu.Unlock()
	return nil
}

// Upload validates the file locally, sends it for analysis and prepends the
// resulting report so an immediately-following read sees it. Validation
// failures (type, size) are distinct errors and never reach the network.
func (c *Cache) Upload(ctx context.Context, filename string, content []byte) (*models.Report, error) {
	if len(content) > common.MaxUploadSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", filename, len(content), common.ErrFileTooLarge)
	}
	if !acceptedUploadType(filename) {
		return nil, fmt.Errorf("%s: %w", filename, common.ErrFileTypeNotAllowed)
	}

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	res, err := c.client.AnalyzeReport(ctx, filename, content)
	if err != nil {
		c.escalateAuth(ctx, err)
		return nil, fmt.Errorf("uploading %s: %w", filename, err)
	}

	report := models.Report{
		ID:             res.ReportID,
		ReportName:     filename,
		UploadDate:     models.NewPortalTime(time.Now()),
		AnalysisResult: res.Analysis,
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.entries = append([]models.Report{report}, c.entries...)
	}
	c.mu.Unlock()
	return &report, nil
}

// Approve transitions a pending report to approved.
//
// The entry is mutated optimistically with PendingCommit set, then either
// replaced by the server-confirmed report or rolled back to the prior
// state. A second approval for the same id while one is in flight fails
// with ErrConflictInProgress instead of racing.
func (c *Cache) Approve(ctx context.Context, id int64, notes string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("report %d not found: %w", id, common.ErrPreconditionFailed)
	}
	// The in-flight check comes first: while an approval is pending the
	// entry already reads as approved optimistically.
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return fmt.Errorf("report %d: %w", id, common.ErrConflictInProgress)
	}
	if c.entries[idx].DoctorApproval {
		c.mu.Unlock()
		return fmt.Errorf("report %d is already approved: %w", id, common.ErrPreconditionFailed)
	}

	c.inflight[id] = struct{}{}
	prior := c.entries[idx]
	c.entries[idx].DoctorApproval = true
	c.entries[idx].DoctorNotes = notes
	c.entries[idx].PendingCommit = true
	epoch := c.epoch
	c.mu.Unlock()

	updated, err := c.client.UpdateReport(ctx, id, models.UpdateReportRequest{Notes: notes, Approval: true})

	c.mu.Lock()
	if c.epoch != epoch {
		// Session ended while the request was in flight; Reset already
		// discarded the optimistic entry and the inflight marker.
		c.mu.Unlock()
		return nil
	}
	delete(c.inflight, id)
	idx = c.indexLocked(id)
	if err != nil {
		if idx >= 0 {
			c.entries[idx] = prior
		}
		c.mu.Unlock()
		c.escalateAuth(ctx, err)
		return fmt.Errorf("approving report %d: %w", id, err)
	}
	if idx >= 0 && updated != nil {
		c.entries[idx] = *updated
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) escalateAuth(ctx context.Context, err error) {
	if errors.Is(err, common.ErrUnauthorized) && c.onAuthError != nil {
		c.onAuthError(ctx)
	}
}

func (c *Cache) indexLocked(id int64) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) revalidateSelectionLocked() {
	if c.selected != nil && c.indexLocked(*c.selected) < 0 {
		c.selected = nil
	}
}

// acceptedUploadType reports whether the backend's analysis pipeline can
// process the file. It only understands PDF documents.
func acceptedUploadType(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
