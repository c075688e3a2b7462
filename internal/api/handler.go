// Package api exposes editing sessions and notes to the UI shell over HTTP.
package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/config"
	"github.com/debemdeboas/notes-editor/internal/editor"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/render"
	"github.com/debemdeboas/notes-editor/internal/routes"
	"github.com/debemdeboas/notes-editor/internal/session"
	"github.com/debemdeboas/notes-editor/internal/sse"
	"github.com/debemdeboas/notes-editor/internal/theme"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

const maxBodyBytes = 4 << 20

type Handler struct {
	manager     *session.Manager
	clients     *sse.SSEClients
	syntaxTheme string
}

func NewHandler(manager *session.Manager, clients *sse.SSEClients, syntaxTheme string) *Handler {
	if syntaxTheme == "" {
		syntaxTheme = render.DefaultSyntaxTheme
	}
	return &Handler{
		manager:     manager,
		clients:     clients,
		syntaxTheme: syntaxTheme,
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.SessionOpen, h.HandleOpen)
	mux.HandleFunc(routes.SessionGet, h.HandleGet)
	mux.HandleFunc(routes.SessionClose, h.HandleClose)
	mux.HandleFunc(routes.SessionContent, h.HandleContent)
	mux.HandleFunc(routes.SessionTitle, h.HandleTitle)
	mux.HandleFunc(routes.SessionCommands, h.HandleCommand)
	mux.HandleFunc(routes.SessionUndo, h.HandleUndo)
	mux.HandleFunc(routes.SessionRedo, h.HandleRedo)
	mux.HandleFunc(routes.SessionSubmit, h.HandleSubmit)
	mux.HandleFunc(routes.SessionPreview, h.HandleSessionPreview)
	mux.HandleFunc(routes.SessionSource, h.HandleSessionSource)
	mux.HandleFunc(routes.SessionEvents, h.HandleEvents)

	mux.HandleFunc(routes.NotesList, h.HandleListNotes)
	mux.HandleFunc(routes.NoteDelete, h.HandleDeleteNote)
	mux.HandleFunc(routes.NotePreview, h.HandleNotePreview)

	mux.HandleFunc(routes.Canonicalize, h.HandleCanonicalize)
	mux.HandleFunc(routes.SyntaxThemes, h.HandleSyntaxThemes)
	mux.HandleFunc(routes.SyntaxCSS, h.HandleSyntaxCSS)
}

// Routes returns a mux with every route mounted and request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		apiLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	var eErr *apperrors.EditorError
	if !stderrors.As(err, &eErr) {
		apiLogger.Error().Err(err).Msg("Unhandled error")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"code":  "INTERNAL",
			"error": "internal error",
		})
		return
	}

	response := map[string]any{
		"code":  eErr.Code,
		"error": eErr.Message,
	}
	if eErr.Details != nil {
		response["details"] = eErr.Details
	}
	writeJSON(w, apperrors.Status(err), response)
}

// decodeBody reads a JSON body into target. An empty body leaves target as is.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewInvalidInput(config.HTTPErrInvalidBody)
	}
	return nil
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

type openRequest struct {
	Note   *model.NoteSummary `json:"note,omitempty"`
	NoteID model.NoteID       `json:"noteId,omitempty"`
}

type changeResponse struct {
	Changed bool             `json:"changed"`
	Session session.Snapshot `json:"session"`
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	target := req.Note
	if target == nil && req.NoteID != "" {
		target = &model.NoteSummary{ID: req.NoteID}
	}
	if target != nil && target.ID == "" {
		target = nil
	}

	s, err := h.manager.Open(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}
	snap := s.Snapshot()
	render.WarmCache([]byte(snap.Markup), h.theme(r))
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleContent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Markup string `json:"markup"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	changed, err := s.OnContentChange(req.Markup)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, Session: s.Snapshot()})
}

func (h *Handler) HandleTitle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.SetTitle(req.Title); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd editor.Command
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}
	h.exec(w, r, cmd)
}

func (h *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	h.exec(w, r, editor.Command{Name: editor.CmdUndo})
}

func (h *Handler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	h.exec(w, r, editor.Command{Name: editor.CmdRedo})
}

func (h *Handler) exec(w http.ResponseWriter, r *http.Request, cmd editor.Command) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	changed, err := s.Exec(cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, Session: s.Snapshot()})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	note, err := s.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) theme(r *http.Request) string {
	return theme.FromRequest(r, h.syntaxTheme)
}

func writePreview(w http.ResponseWriter, title string, html []byte) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<title>%s</title>\n%s", template.HTMLEscapeString(title), html)
}

func (h *Handler) HandleSessionPreview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	html, title := render.RenderPreviewCached([]byte(snap.Markup), h.theme(r))
	if title == "" {
		title = snap.Title
	}
	writePreview(w, title, html)
}

func (h *Handler) HandleSessionSource(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	src, err := render.HighlightMarkdown(s.Snapshot().Markup, h.theme(r))
	if err != nil {
		writeError(w, apperrors.NewConversionFailure(err))
		return
	}
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, src)
}

// HandleEvents streams a session's events until the client goes away or the
// session closes.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set(config.HConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	client := sse.NewClient(s.ID, 16)
	h.clients.Add(client)
	defer h.clients.Delete(client)

	fmt.Fprintf(w, "event: connected\ndata: %d\n\n", s.Snapshot().Version)
	flusher.Flush()

	if s.State() == session.Closed {
		return
	}

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
			if msg.Event == string(session.EventClosed) || msg.Event == string(session.EventSubmitted) {
				return
			}
		case <-notify:
			return
		}
	}
}

func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.manager.ListNotes(r.Context())
	if err != nil {
		writeError(w, apperrors.NewFetchFailure("list", err))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteNote(r.Context(), model.NoteID(r.PathValue("id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleNotePreview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	note, err := h.manager.FetchNote(r.Context(), model.NoteID(id))
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.NewFetchFailure(id, err)
		}
		writeError(w, err)
		return
	}

	html, title := render.RenderPreviewCached([]byte(note.Content), h.theme(r))
	if title == "" {
		title = note.Title
	}
	writePreview(w, title, html)
}

func (h *Handler) HandleCanonicalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markup string `json:"markup"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Markup string `json:"markup"`
		Error  string `json:"error,omitempty"`
	}{}
	doc, err := bridge.Parse(req.Markup)
	if err != nil {
		resp.Error = err.Error()
	}
	resp.Markup = bridge.ToMarkup(doc)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleSyntaxThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": h.syntaxTheme,
		"themes":  theme.Names(),
	})
}

func (h *Handler) HandleSyntaxCSS(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("theme")
	if !theme.Valid(name) {
		writeError(w, apperrors.NewNotFound("syntax theme "+name))
		return
	}
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HCacheControl, "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, render.SyntaxCSS(name))
}
