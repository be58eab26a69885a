// Package front defines the input adapter contract.  An adapter parses one
// source file into a neutral tree honoring the IR shape: every declaration
// typed, every class base present in the same unit.  Source-language parsing
// proper is an external collaborator; the package ships the neutral IR codec
// the external front ends hand their trees over in, which is the same format
// the IR debug dump emits, so dumps round-trip.
package front

import (
	"io/ioutil"
	"path/filepath"
	"strings"

	"polyc/common"
	"polyc/ir"
	"polyc/report"
)

// Adapter parses one file into a neutral tree.  A parse failure is fatal for
// that file only.
type Adapter interface {
	// Parse reads the file at path and returns its language and tree.
	Parse(path string) (common.Lang, *ir.Program, error)
}

// adapters maps a file extension onto its registered adapter.
var adapters = map[string]Adapter{
	".json": jsonAdapter{},
}

// Register binds an adapter to a file extension, replacing any previous
// binding.
func Register(ext string, a Adapter) {
	adapters[ext] = a
}

// ForFile selects the adapter for a file by its extension.
func ForFile(path string) (Adapter, bool) {
	a, ok := adapters[filepath.Ext(path)]
	return a, ok
}

// -----------------------------------------------------------------------------

// jsonAdapter reads the neutral IR interchange format.
type jsonAdapter struct{}

func (jsonAdapter) Parse(path string) (common.Lang, *ir.Program, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return common.LangUnknown, nil, report.Raisef(path, "unable to read input: %s", err)
	}

	lang, prog, err := DecodeProgram(buff)
	if err != nil {
		return common.LangUnknown, nil, report.Raisef(path, "malformed IR input: %s", err)
	}

	if prog.Name == "" {
		prog.Name = unitName(path)
	}

	return lang, prog, nil
}

// unitName derives the unit name from the input file stem.
func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
