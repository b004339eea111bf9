package logging

// LogEntry represents a structured log record with fields relevant to
// generation and evaluation calls.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Model-call fields
	ModelID string // The model serving the call, when known
	Latency int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
