package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/urfave/cli/v2"

	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/config"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/storage"
	"github.com/debemdeboas/notes-editor/internal/util"
)

func importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create a note in the configured storage for every .md file in a directory",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "canonicalize", Usage: "Store the canonical form of each file instead of the raw markup"},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				return fmt.Errorf("expected a directory to import from")
			}
			notes, err := openStorage(c.Context, config.AppConfig.Storage)
			if err != nil {
				return err
			}
			n, err := importNotes(c.Context, notes, dir, c.Bool("canonicalize"), c.App.Writer)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, titleStyle.Render(fmt.Sprintf("Imported %d notes", n)))
			return nil
		},
	}
}

// importNotes creates one note per markdown file in dir. Files that fail are
// reported and skipped.
func importNotes(ctx context.Context, notes storage.Client, dir string, canonical bool, out io.Writer) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	imported := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		in, err := readNoteFile(filepath.Join(dir, file.Name()), canonical)
		if err != nil {
			fmt.Fprintln(out, warnStyle.Render("Skipping "+file.Name()+": "+err.Error()))
			continue
		}
		note, err := notes.CreateNote(ctx, in)
		if err != nil {
			fmt.Fprintln(out, warnStyle.Render("Skipping "+file.Name()+": "+err.Error()))
			continue
		}
		mainLogger.Info().Str("file", file.Name()).Str("note_id", string(note.ID)).Msg("Imported note")
		fmt.Fprintln(out, labelStyle.Render(file.Name()+" ->")+" "+string(note.ID))
		imported++
	}
	return imported, nil
}

// readNoteFile takes the title from the front matter when there is one and
// the file name otherwise. The front matter itself is not kept.
func readNoteFile(path string, canonical bool) (model.NoteInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.NoteInput{}, err
	}

	title := strings.TrimSuffix(filepath.Base(path), ".md")
	if fm, err := util.GetFrontMatter(content); err == nil {
		if t := strings.TrimSpace(fm.Title); t != "" {
			title = t
		}
		content = bytes.TrimLeft(markdown.NormalizeNewlines(content), "\n \t\r")
		content = content[min(fm.Consumed, len(content)):]
	}

	markup := strings.TrimSpace(string(content))
	if canonical {
		doc, err := bridge.Parse(markup)
		if err != nil {
			mainLogger.Warn().Err(err).Str("file", path).Msg("Imported markup only parsed in degraded form")
		}
		markup = bridge.ToMarkup(doc)
	}
	return model.NoteInput{Title: title, Content: markup}, nil
}
