package pipeline

// BuildStatus summarises one module build.
type BuildStatus struct {
	Module        string
	Stage         string // "loading", "rendering", "indexing", "done", "skipped", "error"
	ContentPages  int
	ResourcePages int
	Records       int
	Warnings      int
}

// ManifestError wraps a failure to read or decode the input manifest so
// callers can tell bad input apart from output failures.
type ManifestError struct{ Err error }

func (e *ManifestError) Error() string { return e.Err.Error() }
func (e *ManifestError) Unwrap() error { return e.Err }
