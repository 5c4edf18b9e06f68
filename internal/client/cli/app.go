// Package cli implements the interactive portal client: a small REPL over
// the session manager, the report cache and the diet service.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/config"
	"github.com/dharitri-health/portal-cli/internal/client/localdb"
	"github.com/dharitri-health/portal-cli/internal/client/repositories/chat"
	"github.com/dharitri-health/portal-cli/internal/client/repositories/metadata"
	"github.com/dharitri-health/portal-cli/internal/client/reports"
	"github.com/dharitri-health/portal-cli/internal/client/services"
	"github.com/dharitri-health/portal-cli/internal/client/session"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config  *config.Config
	client  api.Client
	session *session.Manager
	cache   *reports.Cache
	diet    *services.DietService
	db      *sql.DB
	logger  logging.Logger

	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	mode   Mode
}

// NewApp wires the client components together: one HTTP gateway shared by
// the session manager, the report cache and the diet service; 401s from any
// of them cascade into the session manager, and logout discards both the
// report cache and the chat history before the next session can start.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	client := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)
	sess := session.NewManager(client, session.NewMetadataStore(metadata.NewSQLiteRepository(db)), logger)
	cache := reports.NewCache(client, logger)
	diet := services.NewDietService(client, chat.NewSQLiteRepository(db), logger)

	cache.SetAuthErrorHandler(sess.HandleAuthError)
	diet.SetAuthErrorHandler(sess.HandleAuthError)

	sess.OnLogout(func(ctx context.Context) { cache.Reset() })
	sess.OnLogout(func(ctx context.Context) {
		if err := diet.ClearHistory(ctx); err != nil {
			logger.Warn(ctx, "could not clear chat history", "error", err)
		}
	})

	return &App{
		config:  c,
		client:  client,
		session: sess,
		cache:   cache,
		diet:    diet,
		db:      db,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		mode:    ModeOnline,
	}, nil
}

func (a *App) Close() error {
	_ = a.client.Close()
	return a.db.Close()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}
	if a.session.IsAuthenticated() {
		fmt.Fprintf(a.out, "Welcome back, %s\n", a.session.Username())
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isDoctor() bool {
	return a.session.Role() == "Doctor"
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.Username(); u != "" {
		s = u + " "
	}
	s += string(a.currentMode())
	return "(" + s + ")"
}

func (a *App) currentMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher probes the backend's /health endpoint on the
// given interval and flips the prompt between online and offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.client.Health(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
