package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"github.com/scigolib/calvin"
)

func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <file>",
		Short: "Print BLAKE2b-256 digests of the packed data of every data set",
		Long: "Digests cover the row bytes only, so two files holding the same data " +
			"compare equal even when their headers (file ID, creation time) differ.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, done, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer done(&err)
			return writeDigests(cmd.OutOrStdout(), f)
		},
	}
}

func writeDigests(out io.Writer, f *calvin.File) error {
	total, err := blake2b.New256(nil)
	if err != nil {
		return err
	}
	var walkErr error
	f.Walk(func(g *calvin.DataGroup, ds *calvin.DataSet) bool {
		h, err := blake2b.New256(nil)
		if err != nil {
			walkErr = err
			return false
		}
		for r := range ds.Rows() {
			b, err := ds.ReadRowBytes(r)
			if err != nil {
				walkErr = fmt.Errorf("%s/%s row %d: %w", g.Name(), ds.Name(), r, err)
				return false
			}
			h.Write(b)
			total.Write(b)
		}
		fmt.Fprintf(out, "%s  %s/%s\n", hex.EncodeToString(h.Sum(nil)), g.Name(), ds.Name())
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	fmt.Fprintf(out, "%s  total\n", hex.EncodeToString(total.Sum(nil)))
	return nil
}
