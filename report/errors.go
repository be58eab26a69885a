package report

import (
	"fmt"
	"os"
)

// ParseError is a fatal per-file input error: the front end could not produce
// a well-formed tree for the file.  It aborts that file only.
type ParseError struct {
	// The path of the offending file.
	Path string

	// The error message.
	Message string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", pe.Path, pe.Message)
}

// Raisef creates a new fatal parse error.
func Raisef(path, msg string, args ...interface{}) *ParseError {
	return &ParseError{Path: path, Message: fmt.Sprintf(msg, args...)}
}

// -----------------------------------------------------------------------------

// ReportICE reports an internal translator error.  These are errors that
// specifically result from a bug or unexpected condition occurring within the
// translator: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	if rep != nil {
		rep.m.Lock()
		defer rep.m.Unlock()
	}

	displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error and exits.  These are expected errors that
// generally result from invalid configuration: a missing input path, an
// unreadable output directory, etc.
func ReportFatal(message string, args ...interface{}) {
	if rep == nil || rep.logLevel > LogLevelSilent {
		if rep != nil {
			rep.m.Lock()
			defer rep.m.Unlock()
		}

		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// ReportFileError reports a fatal per-file error: ie. malformed input.  Batch
// mode continues past it to the remaining files.
func ReportFileError(path string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	// recorded even when silenced so the exit status still reflects it
	rep.isErr = true

	if rep.logLevel > LogLevelSilent {
		displayFileError(path, err)
	}
}

// ReportDiagnostics reports the accumulated non-fatal diagnostics for a file.
// Diagnostics display at warn level and above.
func ReportDiagnostics(path string, ds *Diags) {
	if rep.logLevel > LogLevelError && len(ds.List()) > 0 {
		rep.m.Lock()
		defer rep.m.Unlock()

		for _, d := range ds.List() {
			displayDiagnostic(path, d)
		}
	}
}

// ReportFileDone reports the successful translation of a single file.  Only
// displayed at the verbose log level.
func ReportFileDone(inPath, outPath string) {
	if rep.logLevel == LogLevelVerbose {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayFileDone(inPath, outPath)
	}
}

// ReportSummary reports the file-by-file summary at the end of a batch run.
func ReportSummary(reports []*FileReport) {
	if rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displaySummary(reports)
	}
}
