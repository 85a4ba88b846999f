// Command calvindump inspects Calvin generic data files: raw bytes, the
// header tree, numeric columns and data digests, and repacks them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scigolib/calvin"
)

const app = "calvindump"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           app,
		Short:         "Inspect Calvin generic data files",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newHexCmd())
	root.AddCommand(newHeaderCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newDigestCmd())
	root.AddCommand(newRepackCmd())
	return root
}

// openFile opens path and reports a close failure through errp.
func openFile(path string) (*calvin.File, func(errp *error), error) {
	f, err := calvin.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func(errp *error) {
		if cerr := f.Close(); cerr != nil && *errp == nil {
			*errp = cerr
		}
	}, nil
}
