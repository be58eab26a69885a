package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"polyc/common"
	"polyc/emit"
	"polyc/front"
	"polyc/ir"
	"polyc/lower"
	"polyc/raise"
	"polyc/report"
	"polyc/rules"
	"polyc/sem"
	"polyc/trans"
	"polyc/verify"
)

// Translator holds the resolved run configuration shared by every file in a
// run.  It is read-only once built: batch mode translates files from
// concurrent goroutines.
type Translator struct {
	// The target language.
	tgt common.Lang

	// The --out override: an output file for a single input, an output
	// directory for a batch.  Empty means alongside the input.
	out string

	// The rule table, overlays already applied.
	set *rules.Set

	// Whether to run the target compiler over each output.
	verify bool

	// Whether to dump each unit's neutral IR alongside its output.
	dumpIR bool
}

// Run translates the file or directory at path and returns the per-file
// reports in input order.
func (tr *Translator) Run(path string) []*report.FileReport {
	absPath, err := filepath.Abs(path)
	if err != nil {
		report.ReportFatal("error calculating absolute path: %s", err.Error())
	}

	finfo, err := os.Stat(absPath)
	if err != nil {
		report.ReportFatal("unable to stat input path `%s`: %s", path, err.Error())
	}

	if finfo.IsDir() {
		return tr.runBatch(absPath)
	}

	return []*report.FileReport{tr.translateFile(absPath)}
}

// runBatch translates every adaptable file in the directory concurrently.
// Each file is independent: its goroutine owns its tree, and results come
// back over a channel.
func (tr *Translator) runBatch(dirPath string) []*report.FileReport {
	finfos, err := ioutil.ReadDir(dirPath)
	if err != nil {
		report.ReportFatal("failed to read input directory `%s`: %s", dirPath, err.Error())
	}

	reportCh := make(chan *report.FileReport)
	nFiles := 0

	for _, finfo := range finfos {
		if finfo.IsDir() {
			continue
		}

		inPath := filepath.Join(dirPath, finfo.Name())
		if _, ok := front.ForFile(inPath); !ok {
			continue
		}

		nFiles++
		go func(inPath string) {
			reportCh <- tr.translateFile(inPath)
		}(inPath)
	}

	if nFiles == 0 {
		report.ReportFatal("no translatable files in `%s`", dirPath)
	}

	byPath := make(map[string]*report.FileReport, nFiles)
	for i := 0; i < nFiles; i++ {
		fr := <-reportCh
		byPath[fr.InPath] = fr
	}

	close(reportCh)

	// Restore directory order for the summary.
	var reports []*report.FileReport
	for _, finfo := range finfos {
		if fr, ok := byPath[filepath.Join(dirPath, finfo.Name())]; ok {
			reports = append(reports, fr)
		}
	}

	return reports
}

// translateFile runs the full pipeline over one input file.  Fatal per-file
// errors land in the report; they never abort the rest of the batch.
func (tr *Translator) translateFile(inPath string) *report.FileReport {
	fr := &report.FileReport{InPath: inPath, Diags: &report.Diags{}}

	adapter, ok := front.ForFile(inPath)
	if !ok {
		fr.Err = fmt.Errorf("no adapter for `%s`", filepath.Ext(inPath))
		report.ReportFileError(inPath, fr.Err)
		return fr
	}

	src, prog, err := adapter.Parse(inPath)
	if err != nil {
		fr.Err = err
		report.ReportFileError(inPath, err)
		return fr
	}

	outPath := tr.outputPathFor(inPath, prog.Name)
	fr.OutPath = outPath

	if tr.dumpIR {
		if err := tr.dumpProgram(src, prog, outPath); err != nil {
			fr.Err = err
			report.ReportFileError(inPath, err)
			return fr
		}
	}

	env, err := sem.Build(prog)
	if err != nil {
		fr.Err = err
		report.ReportFileError(inPath, err)
		return fr
	}

	lower.Lower(prog, env, src, tr.tgt, fr.Diags)
	raise.Raise(prog, env, src, tr.tgt, fr.Diags)

	// The direction passes restructure declarations, so the translator gets
	// a fresh environment over the rewritten tree.
	env, err = sem.Build(prog)
	if err != nil {
		fr.Err = err
		report.ReportFileError(inPath, err)
		return fr
	}

	trans.Translate(prog, env, tr.set, src, tr.tgt, fr.Diags)

	text := emit.Emit(tr.tgt, prog)
	if err := writeOutputFile(outPath, text); err != nil {
		fr.Err = err
		report.ReportFileError(inPath, err)
		return fr
	}

	if tr.verify {
		res, err := verify.Check(tr.tgt, outPath)
		if err != nil {
			fr.Diags.Add(report.VerificationFailure, "toolchain", "%s", err.Error())
		} else if !res.Ok {
			fr.Diags.Add(report.VerificationFailure, "compile", "%s", res.Output)
		} else {
			fr.Verified = true
		}
	}

	report.ReportDiagnostics(inPath, fr.Diags)
	report.ReportFileDone(inPath, outPath)
	return fr
}

// outputPathFor maps an input file onto its single output path.  The unit
// name decides the file stem so the Java wrapping class and its file name
// agree.
func (tr *Translator) outputPathFor(inPath, unitName string) string {
	outName := unitName + common.OutputExt(tr.tgt)

	if tr.out == "" {
		return filepath.Join(filepath.Dir(inPath), outName)
	}

	if finfo, err := os.Stat(tr.out); err == nil && finfo.IsDir() {
		return filepath.Join(tr.out, outName)
	}

	return tr.out
}

// langForOutPath infers the target language from an output file extension.
func langForOutPath(path string) common.Lang {
	return common.LangForExt(filepath.Ext(path))
}

// dumpProgram writes the unit's neutral IR next to its output file.  The
// dump is the adapter's tree before any pass touches it, so feeding it back
// in reproduces the run.
func (tr *Translator) dumpProgram(src common.Lang, prog *ir.Program, outPath string) error {
	data, err := front.EncodeProgram(src, prog)
	if err != nil {
		return fmt.Errorf("unable to encode IR dump: %w", err)
	}

	dumpPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + common.IRFileExt
	return writeOutputFile(dumpPath, string(data))
}

// writeOutputFile writes one emitted output file.
func writeOutputFile(fpath, content string) error {
	file, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open output file `%s`: %w", fpath, err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("failed to write output file `%s`: %w", fpath, err)
	}

	return nil
}
