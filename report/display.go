package report

import (
	"fmt"

	"github.com/pterm/pterm"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

// displayICE displays an internal translator error message.
func displayICE(message string) {
	errorStyleBG.Print("Internal Error")
	errorColorFG.Println(" " + message)
	fmt.Print("This error was not supposed to happen: please open an issue\n\n")
}

// displayFatal displays a fatal configuration error message.
func displayFatal(message string) {
	errorStyleBG.Print("Fatal Error")
	errorColorFG.Println(" " + message)
}

// displayFileError displays a fatal per-file error.
func displayFileError(path string, err error) {
	errorStyleBG.Print("Error")
	errorColorFG.Printf(" %s: %s\n", path, err)
}

// displayDiagnostic displays a single non-fatal diagnostic for a file.
func displayDiagnostic(path string, d *Diagnostic) {
	warnStyleBG.Print("Warning")
	warnColorFG.Printf(" %s: %s\n", path, d)
}

// displayFileDone displays the completion message for a single file.
func displayFileDone(inPath, outPath string) {
	successStyleBG.Print("OK")
	successColorFG.Printf(" %s -> %s\n", inPath, outPath)
}

// displaySummary displays the file-by-file summary for a batch run.
func displaySummary(reports []*FileReport) {
	fmt.Println()

	passed := 0
	for _, fr := range reports {
		if fr.Failed() {
			errorStyleBG.Print("FAIL")
			errorColorFG.Printf(" %s: %s\n", fr.InPath, fr.Err)
			continue
		}

		passed++
		successStyleBG.Print("PASS")
		fmt.Printf(" %s -> %s", fr.InPath, fr.OutPath)
		if n := len(fr.Diags.List()); n > 0 {
			warnColorFG.Printf("  (%d diagnostic(s))", n)
		}
		fmt.Println()
	}

	fmt.Printf("\n%d/%d file(s) translated\n", passed, len(reports))
}
