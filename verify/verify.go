// Package verify checks emitted output against a real compiler.  Each target
// language maps to a system toolchain invocation that parses and type-checks
// the file without producing artifacts.  Verification is advisory: a failure
// marks the file report but never blocks the remaining batch.
package verify

import (
	"bytes"
	"fmt"
	"os/exec"

	"polyc/common"
)

// Result is the outcome of one verification run.
type Result struct {
	// Ok is true when the compiler accepted the file.
	Ok bool

	// Output holds the compiler's stderr when it rejected the file.
	Output string
}

// CommandFor builds the syntax-check command for one output file.  It returns
// an error for languages with no known checker.
func CommandFor(lang common.Lang, path string) (*exec.Cmd, error) {
	switch lang {
	case common.LangC:
		return exec.Command("gcc", "-fsyntax-only", path), nil
	case common.LangCpp:
		return exec.Command("g++", "-fsyntax-only", path), nil
	case common.LangJava:
		// javac has no syntax-only mode; -proc:none at least skips
		// annotation processing.
		return exec.Command("javac", "-proc:none", path), nil
	}

	return nil, fmt.Errorf("no verifier for language `%s`", lang)
}

// Check runs the language's compiler over the emitted file and reports
// whether it was accepted.  A missing toolchain is an error distinct from a
// rejection: the caller decides whether to treat it as fatal.
func Check(lang common.Lang, path string) (Result, error) {
	cmd, err := CommandFor(lang, path)
	if err != nil {
		return Result{}, err
	}

	stderrBuff := bytes.Buffer{}
	cmd.Stderr = &stderrBuff

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// The compiler ran and rejected the file.
			return Result{Ok: false, Output: stderrBuff.String()}, nil
		}

		// The compiler could not be run at all.
		return Result{}, fmt.Errorf("failed to run `%s`: %s", cmd.Path, err.Error())
	}

	return Result{Ok: true}, nil
}
