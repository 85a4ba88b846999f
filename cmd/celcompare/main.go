// Command celcompare compares a CEL file converted from GCOS against a
// Calvin CEL file and writes a .comparison report when they differ.
//
//	celcompare [-f] [-cs] [-im] [-ih] [-t TOLERANCE] gcosFile calvinFile
//
// The exit status is 0 when the files match, -1 on argument errors and -2
// when the files differ.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scigolib/calvin/compare"
	"github.com/scigolib/calvin/internal/cli"
)

const app = "celcompare"

// Exit codes.
const (
	exitMatch    = 0
	exitArgument = -1
	exitDiffer   = -2
)

var errDiffer = errors.New("files differ")

// legacyFlags maps the historical multi-letter single-dash flags to their
// long forms.
var legacyFlags = map[string]string{
	"-cs": "--compare-stdev",
	"-im": "--ignore-masks",
	"-ih": "--ignore-header",
}

func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if long, ok := legacyFlags[a]; ok {
			a = long
		}
		out[i] = a
	}
	return out
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(normalizeArgs(args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	switch {
	case err == nil:
		return exitMatch
	case errors.Is(err, errDiffer):
		return exitDiffer
	default:
		return exitArgument
	}
}

func newRootCmd() *cobra.Command {
	var opts compare.Options
	cmd := &cobra.Command{
		Use:           app + " [-f] [-cs] [-im] [-ih] [-t TOLERANCE] gcosFile calvinFile",
		Short:         "Compare a GCOS-derived CEL file with a Calvin CEL file",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cli.SetupConfig(app)
			if err != nil {
				return err
			}
			if err := v.BindPFlag(cli.KeyTolerance, cmd.Flags().Lookup("tolerance")); err != nil {
				return err
			}
			cfg, err := cli.Load(v)
			if err != nil {
				return err
			}
			opts.Tolerance = cfg.Tolerance
			logger := cli.NewLogger(cfg, cmd.ErrOrStderr())

			cmd.SilenceUsage = true
			report, err := compare.Run(args[0], args[1], opts)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			logger.Printf("compared %s with %s: %d differences, max intensity diff %.6f",
				args[0], args[1], len(report.Differences), report.Intensity.MaxAbs)
			if !report.Match() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s and %s differ, see %s\n",
					args[0], args[1], compare.ReportPath(args[1]))
				return errDiffer
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s and %s match\n", args[0], args[1])
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.FailFast, "fail-fast", "f", false, "stop at the first difference")
	flags.BoolVar(&opts.CompareStdDev, "compare-stdev", false, "compare standard deviations (-cs)")
	flags.BoolVar(&opts.IgnoreMasks, "ignore-masks", false, "ignore masked cells (-im)")
	flags.BoolVar(&opts.IgnoreHeader, "ignore-header", false, "ignore header fields (-ih)")
	flags.Float64P("tolerance", "t", 0, "allowed absolute difference of numeric values")
	return cmd
}
