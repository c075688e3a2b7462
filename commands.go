package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/debemdeboas/notes-editor/internal/api"
	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/config"
	"github.com/debemdeboas/notes-editor/internal/db"
	"github.com/debemdeboas/notes-editor/internal/draft"
	"github.com/debemdeboas/notes-editor/internal/editor"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/render"
	"github.com/debemdeboas/notes-editor/internal/session"
	"github.com/debemdeboas/notes-editor/internal/sse"
	"github.com/debemdeboas/notes-editor/internal/storage"
	"github.com/debemdeboas/notes-editor/internal/util/compression"
)

const shutdownTimeout = 10 * time.Second

// openDraftKV returns the configured draft backend and a func releasing it.
func openDraftKV(ctx context.Context, cfg config.DraftsConfig) (draft.KV, func() error, error) {
	switch cfg.Backend {
	case "sqlite":
		codec, err := compression.ByName(cfg.SQLite.Compression)
		if err != nil {
			return nil, nil, err
		}
		sqlite := db.NewSQLite(cfg.SQLite.Path)
		if err := sqlite.InitDb(); err != nil {
			return nil, nil, fmt.Errorf("failed to open draft database: %w", err)
		}
		return draft.NewSQLiteKV(sqlite, codec), sqlite.Close, nil
	case "redis":
		client, err := draft.DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return draft.NewRedisKV(client, cfg.Redis.TTL()), client.Close, nil
	default:
		return draft.NewMemoryKV(), func() error { return nil }, nil
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Client, error) {
	switch cfg.Backend {
	case "http":
		return storage.NewHTTPClient(cfg.HTTP.BaseURL, cfg.HTTP.Token, cfg.HTTP.Timeout(), cfg.PreviewChars), nil
	case "s3":
		client, err := storage.NewS3Client(ctx, cfg.S3, cfg.PreviewChars)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return storage.NewMemoryClient(cfg.PreviewChars), nil
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the editing service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address, overrides server.host and server.port"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.AppConfig
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			notes, err := openStorage(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			kv, closeKV, err := openDraftKV(ctx, cfg.Drafts)
			if err != nil {
				return err
			}
			defer closeKV()

			writer := draft.NewWriter(draft.NewStore(kv, cfg.Drafts.KeyPrefix), cfg.Drafts.QueueSize)
			defer writer.Close()

			clients := sse.NewSSEClients()
			manager := session.NewManager(notes, writer, clients, session.Options{
				Editor: editor.Options{
					MaxHeadingLevel: cfg.Editor.MaxHeadingLevel,
					GroupDelay:      cfg.Editor.GroupDelay(),
					HistoryDepth:    cfg.Editor.HistoryDepth,
				},
				KeepOnSubmitFailure: cfg.Drafts.KeepOnSubmitFailure,
			})
			defer manager.Shutdown()

			// Warm the stylesheet cache for the default theme.
			render.SyntaxCSS(cfg.Render.SyntaxTheme)

			addr := c.String("addr")
			if addr == "" {
				addr = net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewHandler(manager, clients, cfg.Render.SyntaxTheme).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				mainLogger.Info().
					Str("addr", addr).
					Str("storage", cfg.Storage.Backend).
					Str("drafts", cfg.Drafts.Backend).
					Msg("Serving")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			mainLogger.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func canonicalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "canonicalize",
		Usage:     "Print the canonical form of markup read from a file or stdin",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			var (
				raw []byte
				err error
			)
			if path := c.Args().First(); path != "" && path != "-" {
				raw, err = os.ReadFile(path)
			} else {
				raw, err = io.ReadAll(c.App.Reader)
			}
			if err != nil {
				return fmt.Errorf("failed to read markup: %w", err)
			}

			doc, err := bridge.Parse(string(raw))
			if err != nil {
				fmt.Fprintln(c.App.ErrWriter, warnStyle.Render("Warning: "+err.Error()))
			}
			fmt.Fprintln(c.App.Writer, bridge.ToMarkup(doc))
			return nil
		},
	}
}

func draftsCmd() *cli.Command {
	withStore := func(fn func(c *cli.Context, store *draft.Store) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			kv, closeKV, err := openDraftKV(c.Context, config.AppConfig.Drafts)
			if err != nil {
				return err
			}
			defer closeKV()
			return fn(c, draft.NewStore(kv, config.AppConfig.Drafts.KeyPrefix))
		}
	}

	keyArg := func(c *cli.Context) (model.SessionKey, error) {
		if c.NArg() != 1 {
			return "", fmt.Errorf("expected exactly one draft key")
		}
		return model.SessionKey(c.Args().First()), nil
	}

	return &cli.Command{
		Name:  "drafts",
		Usage: "Inspect the draft store",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every stored draft key",
				Action: withStore(func(c *cli.Context, store *draft.Store) error {
					keys, err := store.List(c.Context)
					if err != nil {
						return err
					}
					for _, k := range keys {
						fmt.Fprintln(c.App.Writer, string(k))
					}
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Print the draft stored for a key",
				ArgsUsage: "<key>",
				Action: withStore(func(c *cli.Context, store *draft.Store) error {
					key, err := keyArg(c)
					if err != nil {
						return err
					}
					d, ok, err := store.Inspect(c.Context, key)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(c.App.Writer, labelStyle.Render("No draft for "+string(key)))
						return nil
					}
					fmt.Fprintln(c.App.Writer, labelStyle.Render("title:")+" "+titleStyle.Render(d.Title))
					fmt.Fprintln(c.App.Writer, labelStyle.Render("content:"))
					fmt.Fprintln(c.App.Writer, d.Content)
					return nil
				}),
			},
			{
				Name:      "clear",
				Usage:     "Remove the draft stored for a key",
				ArgsUsage: "<key>",
				Action: withStore(func(c *cli.Context, store *draft.Store) error {
					key, err := keyArg(c)
					if err != nil {
						return err
					}
					if err := store.Clear(c.Context, key); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, labelStyle.Render("Cleared draft "+string(key)))
					return nil
				}),
			},
		},
	}
}
