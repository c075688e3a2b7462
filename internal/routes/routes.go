// Package routes defines HTTP route patterns for the editor service.
package routes

// API Routes
const (
	// Sessions
	SessionOpen     = "POST /api/sessions"
	SessionGet      = "GET /api/sessions/{id}"
	SessionClose    = "DELETE /api/sessions/{id}"
	SessionContent  = "PUT /api/sessions/{id}/content"
	SessionTitle    = "PUT /api/sessions/{id}/title"
	SessionCommands = "POST /api/sessions/{id}/commands"
	SessionUndo     = "POST /api/sessions/{id}/undo"
	SessionRedo     = "POST /api/sessions/{id}/redo"
	SessionSubmit   = "POST /api/sessions/{id}/submit"
	SessionPreview  = "GET /api/sessions/{id}/preview"
	SessionSource   = "GET /api/sessions/{id}/source"

	// SSE
	SessionEvents = "GET /api/sessions/{id}/events"

	// Notes
	NotesList   = "GET /api/notes"
	NoteDelete  = "DELETE /api/notes/{id}"
	NotePreview = "GET /api/notes/{id}/preview"

	// Markup tools
	Canonicalize = "POST /api/canonicalize"
	SyntaxThemes = "GET /api/syntax"
	SyntaxCSS    = "GET /api/syntax/{theme}"
)
