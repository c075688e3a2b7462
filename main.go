package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/debemdeboas/notes-editor/internal/api"
	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/config"
	"github.com/debemdeboas/notes-editor/internal/db"
	"github.com/debemdeboas/notes-editor/internal/draft"
	"github.com/debemdeboas/notes-editor/internal/logger"
	"github.com/debemdeboas/notes-editor/internal/render"
	"github.com/debemdeboas/notes-editor/internal/session"
	"github.com/debemdeboas/notes-editor/internal/sse"
	"github.com/debemdeboas/notes-editor/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	app := &cli.App{
		Name:      "notes-editor",
		Usage:     "Draft reconciliation and rich editing for notes",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"NOTES_EDITOR_CONFIG"},
			},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "Dotenv file loaded before the config"},
		},
		Before: setup,
		Commands: []*cli.Command{
			serveCmd(),
			canonicalizeCmd(),
			draftsCmd(),
			importCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup loads the environment and config, then hands every package its logger.
func setup(c *cli.Context) error {
	if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(c.App.ErrWriter, warnStyle.Render("Could not load "+c.String("env-file")+": "+err.Error()))
	}

	config.SetLogger(logger.NewWithWriter("info", c.App.ErrWriter))
	if err := config.LoadConfig(c.String("config")); err != nil {
		return err
	}

	setLoggers(logger.NewWithWriter(config.AppConfig.Logging.Level, c.App.ErrWriter))
	return nil
}

var mainLogger zerolog.Logger

func setLoggers(l zerolog.Logger) {
	mainLogger = l
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	bridge.SetLogger(l.With().Str("component", "bridge").Logger())
	draft.SetLogger(l.With().Str("component", "draft").Logger())
	storage.SetLogger(l.With().Str("component", "storage").Logger())
	session.SetLogger(l.With().Str("component", "session").Logger())
	sse.SetLogger(l.With().Str("component", "sse").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
}
