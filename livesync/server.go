package livesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/ephdisc/grimpossiblemission/watch"
)

// settle is how long Run waits after a change before reading the file, so
// that a truncate followed by a write is read once, complete.
const settle = 50 * time.Millisecond

// Run publishes the level at path once and then again every time the file
// changes, until ctx is done. Files that fail to load are reported to
// clients as error messages.
func Run(ctx context.Context, hub *Hub, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := watch.NewWatcher(logger, path)
	if err != nil {
		return fmt.Errorf("livesync: watch %s: %w", path, err)
	}
	defer w.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	reload := func() {
		lvl, err := levels.FromJSON(path)
		if err != nil {
			logger.Warn("level reload failed", slog.String("path", path), slog.Any("error", err))
			if err := hub.PublishError(name, err); err != nil {
				logger.Error("livesync publish failed", slog.Any("error", err))
			}
			return
		}
		if err := hub.Publish(name, lvl); err != nil {
			logger.Error("livesync publish failed", slog.Any("error", err))
		}
	}

	reload()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settle):
			}
			drain(w.Events)
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func drain(events <-chan string) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

// ListenAndServe serves hub on addr at path and hot-reloads levelPath until
// ctx is done. The reload loop has stopped by the time it returns.
func ListenAndServe(ctx context.Context, addr, path, levelPath string, hub *Hub, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("livesync: listen %s: %w", addr, err)
	}
	return serve(ctx, ln, path, levelPath, hub, logger)
}

func serve(ctx context.Context, ln net.Listener, path, levelPath string, hub *Hub, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, hub.Handler())
	srv := &http.Server{Handler: mux}

	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	go func() { runErr <- Run(runCtx, hub, levelPath, logger) }()
	defer func() {
		cancel()
		<-runErr
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("livesync listening", slog.String("addr", ln.Addr().String()), slog.String("path", path))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("livesync: serve %s: %w", ln.Addr(), err)
		}
	case err := <-runErr:
		// Run has already returned; give the deferred wait a value.
		runErr <- err
		if err != nil {
			srv.Close()
			return err
		}
	}

	hub.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
