package espw

import "fmt"

// ParseError reports a malformed row in external tool output. It is a
// per-record problem: the batch records it and moves on.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse: line %d: %s", e.Line, e.Reason)
	}
	return "parse: " + e.Reason
}

// DownloadError reports a failed retrieval from a remote repository,
// after retries were exhausted.
type DownloadError struct {
	Target string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Target, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ToolInvocationError reports an external tool that could not be
// started or that exited nonzero.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid setup: missing references, bad
// thresholds, unusable tool paths. Unlike the per-record errors it is
// fatal for the whole run.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}
