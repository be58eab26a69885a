// Package cmd wires the command line onto the translation pipeline: flag
// handling, rule overlay loading, batch orchestration, and exit status.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"polyc/common"
	"polyc/report"
	"polyc/rules"

	"github.com/spf13/cobra"
)

var (
	targetName string
	outPath    string
	rulesPath  string
	logLevel   string
	runVerify  bool
	dumpIR     bool
)

var rootCmd = &cobra.Command{
	Use:   "polyc [flags] <input file or directory>",
	Short: "polyc translates programs between C, Java, and C++",
	Long: `polyc is a rule-driven source-to-source translator.  It reads programs in
the neutral IR interchange format, crosses paradigms where the target
requires it (classes, generics, and managed maps lower to procedural C;
recognizable procedural shapes raise to classes and containers), respells
library idioms through the rule table, and emits the target language.

Given a directory, every translatable file in it is processed concurrently
and a per-file summary is printed at the end.`,
	Version:       common.PolycVersion,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		report.InitReporter(parseLogLevel(logLevel))

		tgt := resolveTarget()

		set := rules.Defaults()
		if path := overlayPath(args[0]); path != "" {
			loaded, err := rules.Load(set, path)
			if err != nil {
				report.ReportFatal(err.Error())
			}
			set = loaded
		}

		tr := &Translator{
			tgt:    tgt,
			out:    outPath,
			set:    set,
			verify: runVerify,
			dumpIR: dumpIR,
		}

		reports := tr.Run(args[0])
		report.ReportSummary(reports)

		for _, fr := range reports {
			if fr.Failed() || (runVerify && !fr.Verified) {
				return errors.New("translation failed")
			}
		}

		if report.AnyErrors() {
			return errors.New("translation failed")
		}

		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&targetName, "target", "t", "", "target language: c, java, or cpp (inferred from --out when omitted)")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, or output directory in batch mode")
	rootCmd.Flags().StringVar(&rulesPath, "rules", "", "TOML rule overlay layered over the built-in table (defaults to "+common.RulesFileName+" next to the input when present)")
	rootCmd.Flags().StringVar(&logLevel, "loglevel", "verbose", "log level: verbose, warn, error, or silent")
	rootCmd.Flags().BoolVar(&runVerify, "verify", false, "check each output file with the target language's compiler")
	rootCmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "also write each unit's neutral IR alongside its output")
}

// Execute runs the root command.  A non-nil return means at least one file
// failed and the process should exit non-zero.
func Execute() error {
	return rootCmd.Execute()
}

// overlayPath picks the rule overlay file: the --rules flag, or the default
// overlay name next to the input when one exists there.
func overlayPath(inputPath string) string {
	if rulesPath != "" {
		return rulesPath
	}

	dir := inputPath
	if finfo, err := os.Stat(inputPath); err != nil || !finfo.IsDir() {
		dir = filepath.Dir(inputPath)
	}

	implicit := filepath.Join(dir, common.RulesFileName)
	if _, err := os.Stat(implicit); err == nil {
		return implicit
	}

	return ""
}

// resolveTarget determines the target language from --target, falling back
// to the --out file extension.
func resolveTarget() common.Lang {
	if targetName != "" {
		tgt := common.ParseLang(targetName)
		if tgt == common.LangUnknown {
			report.ReportFatal("unknown target language `%s`", targetName)
		}

		return tgt
	}

	if outPath != "" {
		if tgt := langForOutPath(outPath); tgt != common.LangUnknown {
			return tgt
		}
	}

	report.ReportFatal("no target language: pass --target or an --out path with a recognizable extension")
	return common.LangUnknown
}

// parseLogLevel converts the --loglevel flag value to a reporter log level.
func parseLogLevel(name string) int {
	switch name {
	case "silent":
		return report.LogLevelSilent
	case "error":
		return report.LogLevelError
	case "warn":
		return report.LogLevelWarn
	case "verbose":
		return report.LogLevelVerbose
	}

	fmt.Printf("argument error: unknown log level `%s`\n", name)
	return report.LogLevelVerbose
}
