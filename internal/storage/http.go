package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/notes-editor/internal/config"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
)

// HTTPClient talks to the notes REST API.
type HTTPClient struct {
	baseURL      string
	token        string
	previewChars int
	client       *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration, previewChars int) *HTTPClient {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		previewChars: previewChars,
		client:       &http.Client{Timeout: timeout},
	}
}

// statusError is returned for any non-2xx response.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	req.Header.Set("Accept", config.CTypeJSON)
	if c.token != "" {
		req.Header.Set(config.HAuthorize, "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	storageLogger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Storage request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// notFound maps the statuses the server uses for missing or foreign notes.
func notFound(err error, id model.NoteID) error {
	if se, ok := err.(*statusError); ok && (se.Status == http.StatusNotFound || se.Status == http.StatusForbidden) {
		nf := apperrors.NewNotFound(string(id))
		nf.Err = err
		return nf
	}
	return err
}

func notePath(action string, id model.NoteID) string {
	return "/api/notes/" + action + "/" + url.PathEscape(string(id))
}

func (c *HTTPClient) FetchNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	var w wireNote
	if err := c.do(ctx, http.MethodGet, notePath("get", id), nil, &w); err != nil {
		return nil, notFound(err, id)
	}
	return w.note(), nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, in model.NoteInput) (*model.Note, error) {
	var w wireNote
	if err := c.do(ctx, http.MethodPost, "/api/notes/create", in, &w); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, fmt.Errorf("create response carried no note id")
	}
	return w.note(), nil
}

// UpdateNote accepts either a note body or 204 No Content in reply.
func (c *HTTPClient) UpdateNote(ctx context.Context, id model.NoteID, in model.NoteInput) (*model.Note, error) {
	var w wireNote
	if err := c.do(ctx, http.MethodPut, notePath("update", id), in, &w); err != nil {
		return nil, notFound(err, id)
	}
	if w.ID == "" {
		return &model.Note{ID: id, Title: in.Title, Content: in.Content}, nil
	}
	return w.note(), nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id model.NoteID) error {
	return notFound(c.do(ctx, http.MethodDelete, notePath("delete", id), nil, nil), id)
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]model.NoteSummary, error) {
	var entries []*wireSummary
	if err := c.do(ctx, http.MethodGet, "/api/notes/all", nil, &entries); err != nil {
		return nil, err
	}

	out := make([]model.NoteSummary, 0, len(entries))
	for _, e := range entries {
		s, field := e.summary(c.previewChars)
		if field != "" && field != "previewContent" {
			storageLogger.Warn().Str("note_id", string(s.ID)).Str("field", field).Msg("List entry preview read from fallback field")
		}
		out = append(out, s)
	}
	return out, nil
}
