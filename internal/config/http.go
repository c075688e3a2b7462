package config

const (
	HCType        = "Content-Type"
	HCacheControl = "Cache-Control"
	HConnection   = "Connection"
	HAuthorize    = "Authorization"

	CTypeHTML        = "text/html"
	CTypeJSON        = "application/json"
	CTypeEventStream = "text/event-stream"
	CTypeCSS         = "text/css"
)

const (
	HTTPErrInvalidBody = "Invalid request body"
)
