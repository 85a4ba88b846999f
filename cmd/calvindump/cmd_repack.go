package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scigolib/calvin"
	"github.com/scigolib/calvin/internal/cli"
)

func newRepackCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "repack -o <dir> <file>...",
		Short: "Rewrite Calvin files uncompressed through one buffered writer",
		Long: "Each input is written to <dir> under its own name, without a .gz suffix. " +
			"Rows of all files share one buffer whose ceiling is the buffer_size setting.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cli.SetupConfig(app)
			if err != nil {
				return err
			}
			if err := v.BindPFlag(cli.KeyBufferSize, cmd.Flags().Lookup("buffer-size")); err != nil {
				return err
			}
			cfg, err := cli.Load(v)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(cfg, cmd.ErrOrStderr())

			bw := calvin.NewBufferWriter(calvin.WithMaxBufferSize(cfg.BufferSize), calvin.WithLogger(logger))
			if err := repack(bw, outDir, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "repacked %d files into %s, %d flushes of at most %d bytes\n",
				len(args), outDir, bw.Flushes(), bw.MaxBufferSize())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().Int("buffer-size", cli.DefaultBufferSize, "buffered byte ceiling")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// repackPath returns the output path of in under dir.
func repackPath(dir, in string) string {
	return filepath.Join(dir, strings.TrimSuffix(filepath.Base(in), ".gz"))
}

func repack(bw *calvin.BufferWriter, outDir string, inputs []string) (err error) {
	files := make([]*calvin.File, 0, len(inputs))
	defer func() {
		for _, f := range files {
			err = errors.Join(err, f.Close())
		}
	}()

	skeletons := make([]calvin.FileSkeleton, len(inputs))
	for i, in := range inputs {
		out := repackPath(outDir, in)
		if same, _ := sameFile(in, out); same {
			return fmt.Errorf("%s would overwrite its input", out)
		}
		f, err := calvin.Open(in)
		if err != nil {
			return err
		}
		files = append(files, f)
		skeletons[i] = calvin.FileSkeleton{Path: out, Header: f.Header()}
	}

	if err := bw.Initialize(skeletons); err != nil {
		return err
	}
	for fi, f := range files {
		if err := copyRows(bw, fi, f); err != nil {
			_ = bw.Close()
			return err
		}
	}
	return bw.Close()
}

func copyRows(bw *calvin.BufferWriter, fi int, f *calvin.File) error {
	var walkErr error
	f.Walk(func(g *calvin.DataGroup, ds *calvin.DataSet) bool {
		key := calvin.SlotKey{Group: g.Name(), DataSet: ds.Name()}
		for r := range ds.Rows() {
			b, err := ds.ReadRowBytes(r)
			if err != nil {
				walkErr = fmt.Errorf("%s %s row %d: %w", f.Path(), key, r, err)
				return false
			}
			if err := bw.WriteRow(fi, key, b); err != nil {
				walkErr = err
				return false
			}
		}
		return true
	})
	return walkErr
}

func sameFile(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ia, ib), nil
}
