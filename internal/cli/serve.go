package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pthm/editable"
	"github.com/pthm/editable/internal/config"
	"github.com/pthm/editable/lib/store"
)

// Flags for the `serve` command line command, for `go-flags` to parse
// command line args into.
type ServeCommand struct {
	Config string `short:"c" long:"config" description:"the config file to read" value-name:"<FILE>" default:"editable.yaml"`
	Listen string `short:"l" long:"listen" description:"the address to listen on, overriding the config" value-name:"<ADDR>"`
}

// Executes the serve command.
// (This gets called by `go-flags` when `serve` is provided on the command
// line)
func (command *ServeCommand) Execute(args []string) error {
	cfg, err := config.Load(command.Config)
	if err != nil {
		return err
	}
	if command.Listen != "" {
		cfg.Listen = command.Listen
	}
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := setupLogger(lvl)

	srv, closeStores, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen).Int("pages", len(cfg.Pages)).Msg("listening")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Build assembles the editor and server described by cfg. The returned
// function closes the stores it opened.
func Build(cfg config.Config, logger zerolog.Logger) (*editable.Server, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn().Err(err).Msg("closing store")
			}
		}
	}

	codec, err := cfg.Codec()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	transport := &editable.HTTPTransport{Codec: codec, Header: http.Header{}}
	for k, v := range cfg.Post.Headers {
		transport.Header.Set(k, v)
	}

	ed := editable.New(
		editable.WithLogger(logger),
		editable.WithDataLoader(editable.NewStaticData(cfg.Datasets)),
		editable.WithTransport(transport),
	)

	if cfg.Store.SQLite != "" {
		db, err := store.OpenSQLite(cfg.Store.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		closers = append(closers, db.Close)
		if err := store.RegisterSQLite(ed, db); err != nil {
			closeAll()
			return nil, nil, err
		}
		logger.Debug().Str("path", cfg.Store.SQLite).Msg("sqlite target registered")
	}
	if cfg.Store.Bolt != "" {
		db, err := store.OpenBolt(cfg.Store.Bolt)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening bolt store: %w", err)
		}
		closers = append(closers, db.Close)
		if err := store.RegisterBolt(ed, db); err != nil {
			closeAll()
			return nil, nil, err
		}
		logger.Debug().Str("path", cfg.Store.Bolt).Msg("bolt target registered")
	}

	key := []byte(cfg.Key)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			closeAll()
			return nil, nil, err
		}
		logger.Warn().Msg("no signing key configured, using a random key")
	}

	srv, err := editable.NewServer(ed, key, editable.WithPrefix(cfg.Prefix), editable.WithTimeout(timeout))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	for _, p := range cfg.Pages {
		if err := addPage(srv, p); err != nil {
			closeAll()
			return nil, nil, err
		}
	}
	return srv, closeAll, nil
}

func addPage(srv *editable.Server, p config.Page) error {
	f, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("can't read page '%s': %w", p.ID, err)
	}
	defer f.Close()
	if _, err := srv.AddPage(p.ID, f); err != nil {
		return fmt.Errorf("can't load page '%s': %w", p.ID, err)
	}
	return nil
}
