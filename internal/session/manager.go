package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/notes-editor/internal/draft"
	"github.com/debemdeboas/notes-editor/internal/editor"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/storage"
)

type Options struct {
	Editor editor.Options
	// KeepOnSubmitFailure writes the draft back when a submit fails.
	KeepOnSubmitFailure bool
	Now                 func() time.Time
}

// Manager owns the live sessions. At most one session is live per key.
type Manager struct {
	storage  storage.Client
	drafts   *draft.Writer
	notifier Notifier
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Session
	live     map[model.SessionKey]*Session
}

func NewManager(client storage.Client, drafts *draft.Writer, notifier Notifier, opts Options) *Manager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		storage:  client,
		drafts:   drafts,
		notifier: notifier,
		opts:     opts,
		sessions: make(map[string]*Session),
		live:     make(map[model.SessionKey]*Session),
	}
}

func (m *Manager) notify(ev Event) {
	m.notifier.Notify(ev)
}

func (m *Manager) notifyError(id string, version uint64, err error) {
	m.notifier.Notify(errorEvent(id, version, err))
}

// Open starts a session for target, or for a new note when target is nil.
// A new note resolves at once to empty content. For an existing note the
// authoritative copy and the stored draft are read concurrently. If the
// session is closed before both settle, the results are discarded and a
// SESSION_CLOSED error is returned.
func (m *Manager) Open(ctx context.Context, target *model.NoteSummary) (*Session, error) {
	key := model.NewNoteKey
	if target != nil {
		key = model.KeyFor(target.ID)
	}

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &Session{
		ID:     ulid.Make().String(),
		Key:    key,
		m:      m,
		state:  Idle,
		cancel: cancel,
	}
	if !key.IsNew() {
		s.state = FetchingAuthoritative
	}
	m.register(s)

	var (
		note     *model.Note
		fetchErr error
		stored   *model.Draft
		g        errgroup.Group
	)
	// A new note starts empty. Its stored draft is only ever written.
	if !key.IsNew() {
		g.Go(func() error {
			note, fetchErr = m.storage.FetchNote(loadCtx, key.NoteID())
			return nil
		})
		g.Go(func() error {
			stored = m.loadDraft(loadCtx, s)
			return nil
		})
		_ = g.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil

	if s.state == Closed {
		s.log().Debug().Msg("Session closed while loading, discarding result")
		return nil, apperrors.NewSessionClosed(s.ID)
	}

	var authoritative *model.Draft
	authSource := SourceAuthoritative
	if !key.IsNew() {
		if fetchErr == nil {
			authoritative = &model.Draft{Title: note.Title, Content: note.Content}
		} else {
			s.log().Warn().Err(fetchErr).Str("note_id", string(target.ID)).Msg("Failed to fetch note, using list entry")
			m.notifyError(s.ID, s.version, apperrors.NewFetchFailure(string(target.ID), fetchErr))
			authoritative = &model.Draft{Title: target.Title, Content: target.Preview}
			authSource = SourceFallback
		}
	}

	content, source := Resolve(stored, authoritative, authSource)
	s.resolve(content, source)
	return s, nil
}

func (m *Manager) loadDraft(ctx context.Context, s *Session) *model.Draft {
	// Writes queued by an earlier session for the same key land first.
	if err := m.drafts.Flush(ctx); err != nil {
		s.log().Warn().Err(err).Msg("Failed to flush pending draft writes")
	}

	d, ok, err := m.drafts.Store().Inspect(ctx, s.Key)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDraftParseFailure) {
			m.notifyError(s.ID, 0, err)
		}
		s.log().Warn().Err(err).Msg("Ignoring stored draft")
		return nil
	}
	if !ok {
		return nil
	}
	return &d
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	prev := m.live[s.Key]
	m.live[s.Key] = s
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if prev != nil {
		prev.log().Info().Str("replaced_by", s.ID).Msg("Closing session replaced by a newer one")
		prev.Close()
	}
}

func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID)
	if m.live[s.Key] == s {
		delete(m.live, s.Key)
	}
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFound("session " + id)
	}
	return s, nil
}

// Live returns the session currently editing key, if any.
func (m *Manager) Live(key model.SessionKey) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live[key]
	return s, ok
}

func (m *Manager) ListNotes(ctx context.Context) ([]model.NoteSummary, error) {
	return m.storage.ListNotes(ctx)
}

func (m *Manager) FetchNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	return m.storage.FetchNote(ctx, id)
}

// DeleteNote removes the note from storage, then its draft and any session
// editing it.
func (m *Manager) DeleteNote(ctx context.Context, id model.NoteID) error {
	if err := m.storage.DeleteNote(ctx, id); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.NewSubmitFailure("delete", err)
	}

	key := model.KeyFor(id)
	if s, ok := m.Live(key); ok {
		s.Close()
	}
	if err := m.drafts.Clear(ctx, key); err != nil {
		sessionLogger.Error().Err(err).Str("note_id", string(id)).Msg("Failed to clear draft of deleted note")
	}
	sessionLogger.Info().Str("note_id", string(id)).Msg("Note deleted")
	return nil
}

// Shutdown closes every session. Drafts are kept.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
}
