package types

import "fmt"

// ErrorKind is one of the named failure categories a pipeline stage can
// report. Most stages prefer to record a Warning and continue; a Kind
// is only fatal to the whole pass when explicitly noted below.
type ErrorKind string

const (
	// InputMalformed means the archive itself isn't valid JSON/HAR and
	// the pass cannot proceed at all.
	InputMalformed ErrorKind = "input_malformed"
	// SchemaUnparseable means a body claimed a parseable content type
	// but didn't decode; the exchange is kept with an empty schema.
	SchemaUnparseable ErrorKind = "schema_unparseable"
	// UrlInvalid means one exchange's URL didn't parse; that exchange
	// is dropped, the pass continues.
	UrlInvalid ErrorKind = "url_invalid"
	// NoInternalApi means every exchange was filtered as noise or
	// third-party traffic, leaving nothing to build a skill from.
	NoInternalApi ErrorKind = "no_internal_api"
	// PackageConflict means an on-disk package for this service exists
	// and was authored by something else (no recognizable frontmatter).
	PackageConflict ErrorKind = "package_conflict"
	// HashCollision means two distinct builds produced the same
	// version_hash for different content, which should be
	// cryptographically impossible and indicates a hashing bug.
	HashCollision ErrorKind = "hash_collision"
)

// PipelineError is a fatal error tagged with its Kind, returned from a
// stage that cannot produce any output.
type PipelineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewError constructs a PipelineError of the given kind.
func NewError(kind ErrorKind, msg string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Msg: msg, Err: err}
}

// Warning is a non-fatal problem recorded against one exchange or
// endpoint during a pass, surfaced to the caller alongside the result
// rather than aborting it.
type Warning struct {
	Kind    ErrorKind
	Context string // e.g. exchange index, endpoint_id
	Msg     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%s]: %s", w.Kind, w.Context, w.Msg)
}

// AnalysisContext threads accumulated warnings and cancellation through
// a pipeline run without resorting to package-level mutable state.
type AnalysisContext struct {
	Warnings []Warning
}

// Warn records a non-fatal warning against the run.
func (c *AnalysisContext) Warn(kind ErrorKind, context, msg string) {
	c.Warnings = append(c.Warnings, Warning{Kind: kind, Context: context, Msg: msg})
}
