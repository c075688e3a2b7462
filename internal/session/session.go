// Package session reconciles drafts with authoritative notes and drives one
// live editor per note.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/notes-editor/internal/bridge"
	"github.com/debemdeboas/notes-editor/internal/editor"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/util"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type State int

const (
	Idle State = iota
	FetchingAuthoritative
	Resolved
	Editing
	Submitting
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingAuthoritative:
		return "fetching"
	case Resolved:
		return "resolved"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := Idle; st <= Closed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Source names where the content a session loaded with came from.
type Source string

const (
	SourceDraft         Source = "draft"
	SourceAuthoritative Source = "authoritative"
	SourceFallback      Source = "fallback"
	SourceEmpty         Source = "empty"
	SourceExternal      Source = "external"
)

// Resolve applies the load priority: a stored draft wins when it has content
// or when there is nothing better; otherwise the authoritative copy, then an
// empty note.
func Resolve(draft *model.Draft, authoritative *model.Draft, authSource Source) (model.Draft, Source) {
	authEmpty := authoritative == nil || authoritative.IsEmpty()
	if draft != nil && (!draft.IsEmpty() || authEmpty) {
		return *draft, SourceDraft
	}
	if authoritative != nil {
		return *authoritative, authSource
	}
	return model.Draft{}, SourceEmpty
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID        string           `json:"id"`
	Key       model.SessionKey `json:"key"`
	State     State            `json:"state"`
	Source    Source           `json:"source"`
	Version   uint64           `json:"version"`
	Title     string           `json:"title"`
	Markup    string           `json:"markup"`
	Selection editor.Selection `json:"selection"`
	CanUndo   bool             `json:"canUndo"`
	CanRedo   bool             `json:"canRedo"`
}

// Session is one editing target. Every method is safe for concurrent use;
// events are applied one at a time.
type Session struct {
	ID  string
	Key model.SessionKey

	m *Manager

	mu       sync.Mutex
	state    State
	source   Source
	baseline model.Draft
	// canonical form of baseline.Content
	baselineMarkup string
	title          string
	editor         *editor.Editor
	version        uint64
	cancel         context.CancelFunc
}

func (s *Session) log() *zerolog.Logger {
	l := sessionLogger.With().
		Str("session_id", s.ID).
		Str("session_key", string(s.Key)).
		Logger()
	return &l
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:      s.ID,
		Key:     s.Key,
		State:   s.state,
		Source:  s.source,
		Version: s.version,
		Title:   s.title,
	}
	if s.editor != nil {
		snap.Markup = s.editor.Markup()
		snap.Selection = s.editor.Selection()
		snap.CanUndo = s.editor.CanUndo()
		snap.CanRedo = s.editor.CanRedo()
	}
	return snap
}

// resolve loads the chosen content into a fresh editor. Called with mu held.
func (s *Session) resolve(content model.Draft, source Source) {
	s.state = Resolved
	s.source = source
	s.baseline = content
	s.title = content.Title

	doc, err := bridge.Parse(content.Content)
	if err != nil {
		s.log().Warn().Err(err).Msg("Loaded content only parsed in degraded form")
		s.m.notifyError(s.ID, s.version, apperrors.NewConversionFailure(err))
	}
	s.editor = editor.New(doc, s.m.opts.Editor)
	s.baselineMarkup = s.editor.Markup()

	s.state = Editing
	s.log().Info().Str("source", string(source)).Str("state", s.state.String()).Msg("Session resolved")
	s.m.notify(Event{Type: EventResolved, SessionID: s.ID, Version: s.version, Source: source, Title: s.title, Markup: s.baselineMarkup})
}

func (s *Session) editable() error {
	if s.state != Editing {
		return apperrors.NewSessionClosed(s.ID)
	}
	return nil
}

// OnContentChange receives markup supplied from outside the session. The
// document is replaced, and its history dropped, only when the markup differs
// from the current document's canonical form.
func (s *Session) OnContentChange(markup string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return false, err
	}

	if !s.editor.Sync(markup) {
		return false, nil
	}
	s.source = SourceExternal
	s.baseline = model.Draft{Title: s.title, Content: markup}
	s.baselineMarkup = s.editor.Markup()
	s.log().Debug().Msg("External content replaced the document")
	s.changed()
	return true, nil
}

func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if title == s.title {
		return nil
	}
	s.title = title
	s.changed()
	return nil
}

// Exec runs an editor command and persists the result when it changed the
// document.
func (s *Session) Exec(cmd editor.Command) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return false, err
	}

	changed, err := s.editor.Exec(cmd)
	if err != nil {
		return false, err
	}
	if changed {
		s.changed()
	}
	return changed, nil
}

func (s *Session) Undo() (bool, error) {
	return s.Exec(editor.Command{Name: editor.CmdUndo})
}

func (s *Session) Redo() (bool, error) {
	return s.Exec(editor.Command{Name: editor.CmdRedo})
}

// changed bumps the version, writes the draft and tells listeners.
func (s *Session) changed() {
	s.version++
	current := s.current()

	// A session loaded from its draft keeps that draft even when the edits
	// come back to it.
	if s.atBaseline(current) && s.source != SourceDraft {
		s.m.drafts.Remove(s.Key)
	} else {
		s.m.drafts.Save(s.Key, current)
	}

	s.m.notify(Event{Type: EventChanged, SessionID: s.ID, Version: s.version, Title: current.Title, Markup: current.Content})
}

func (s *Session) current() model.Draft {
	return model.Draft{Title: s.title, Content: s.editor.Markup()}
}

func (s *Session) atBaseline(d model.Draft) bool {
	return strings.TrimSpace(d.Title) == strings.TrimSpace(s.baseline.Title) &&
		strings.TrimSpace(d.Content) == strings.TrimSpace(s.baselineMarkup)
}

// Submit hands the current content to storage. The draft is cleared before
// the call is made and the session is closed whatever the outcome.
func (s *Session) Submit(ctx context.Context) (*model.Note, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = Submitting
	content := s.current()
	version := s.version
	s.mu.Unlock()

	if err := s.m.drafts.Clear(ctx, s.Key); err != nil {
		s.log().Error().Err(err).Msg("Failed to clear draft before submit")
	}

	input := content.Input()
	if strings.TrimSpace(input.Title) == "" {
		input.Title = util.DeriveTitle(input.Content, s.m.opts.Now())
	}

	var (
		note *model.Note
		err  error
		op   string
	)
	if s.Key.IsNew() {
		op = "create"
		note, err = s.m.storage.CreateNote(ctx, input)
	} else {
		op = "update"
		note, err = s.m.storage.UpdateNote(ctx, s.Key.NoteID(), input)
	}

	s.mu.Lock()
	s.state = Closed
	s.mu.Unlock()
	s.m.release(s)

	if err != nil {
		subErr := apperrors.NewSubmitFailure(op, err)
		s.log().Error().Err(err).Str("op", op).Msg("Submit failed")
		if s.m.opts.KeepOnSubmitFailure {
			s.m.drafts.Save(s.Key, content)
		}
		s.m.notifyError(s.ID, version, subErr)
		return nil, subErr
	}

	s.log().Info().Str("note_id", string(note.ID)).Msg("Note submitted")
	s.m.notify(Event{Type: EventSubmitted, SessionID: s.ID, Version: version, NoteID: note.ID, Title: note.Title})
	return note, nil
}

// Close ends the session. A fetch still in flight is abandoned and its result
// discarded. The draft is kept.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	if s.cancel != nil {
		s.cancel()
	}
	version := s.version
	s.mu.Unlock()

	s.m.release(s)
	s.log().Debug().Msg("Session closed")
	s.m.notify(Event{Type: EventClosed, SessionID: s.ID, Version: version})
}
