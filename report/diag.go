package report

import "fmt"

// DiagKind classifies a translation diagnostic.
type DiagKind int

// Enumeration of diagnostic kinds.  Only FatalParse stops translation of a
// file; every other kind accumulates and translation continues.
const (
	// FatalParse indicates malformed input.  It aborts the offending file and
	// no other.
	FatalParse DiagKind = iota

	// UnsupportedConstruct indicates a recognized-but-not-lowerable shape,
	// such as multiple inheritance or a multi-parameter template.  The
	// original fragment is emitted verbatim inside a marker comment.
	UnsupportedConstruct

	// RuleMiss indicates that an idiom had no rule table entry.  The call is
	// passed through unchanged.
	RuleMiss

	// VerificationFailure indicates the external compiler rejected the
	// emitted text.  The emitted file is not rolled back.
	VerificationFailure
)

func (k DiagKind) String() string {
	switch k {
	case FatalParse:
		return "parse error"
	case UnsupportedConstruct:
		return "unsupported construct"
	case RuleMiss:
		return "rule miss"
	case VerificationFailure:
		return "verification failure"
	}

	return "unknown"
}

// Diagnostic is a single non-fatal (or fatal) condition detected while
// translating one file.
type Diagnostic struct {
	// The kind of the diagnostic.
	Kind DiagKind

	// The construct the diagnostic concerns: a class name, an idiom name, a
	// callee, etc.  May be empty for file-level conditions.
	Construct string

	// The human-readable message.
	Message string
}

func (d *Diagnostic) String() string {
	if d.Construct == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}

	return fmt.Sprintf("%s: `%s`: %s", d.Kind, d.Construct, d.Message)
}

// -----------------------------------------------------------------------------

// Diags accumulates the diagnostics produced while translating a single file.
// It is owned by exactly one file's pipeline and needs no synchronization.
type Diags struct {
	list []*Diagnostic
}

// Add appends a diagnostic.
func (ds *Diags) Add(kind DiagKind, construct, msg string, args ...interface{}) {
	ds.list = append(ds.list, &Diagnostic{
		Kind:      kind,
		Construct: construct,
		Message:   fmt.Sprintf(msg, args...),
	})
}

// List returns the accumulated diagnostics in the order they were added.
func (ds *Diags) List() []*Diagnostic {
	return ds.list
}

// CountKind returns the number of diagnostics of the given kind.
func (ds *Diags) CountKind(kind DiagKind) int {
	n := 0
	for _, d := range ds.list {
		if d.Kind == kind {
			n++
		}
	}

	return n
}

// -----------------------------------------------------------------------------

// FileReport is the per-file result surfaced to batch mode: the translated
// output path, the accumulated diagnostics, and the fatal error if any.
type FileReport struct {
	// The input path of the file.
	InPath string

	// The output path the translation was written to.  Empty if the file
	// failed fatally before emission.
	OutPath string

	// The accumulated non-fatal diagnostics.
	Diags *Diags

	// The fatal error, if translation of this file was aborted.
	Err error

	// Whether external verification was requested and passed.  Meaningless
	// unless verification ran.
	Verified bool
}

// Failed reports whether the file failed fatally.
func (fr *FileReport) Failed() bool {
	return fr.Err != nil
}
