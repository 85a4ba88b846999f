package main

import (
	"fmt"
	"os"

	"github.com/sbinet/npyio"
	"github.com/spf13/cobra"

	"github.com/scigolib/calvin"
)

func newExportCmd() *cobra.Command {
	var group, set, column, out string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write one numeric column to a .npy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, done, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer done(&err)
			ds, err := f.DataSet(group, set)
			if err != nil {
				return err
			}
			col := ds.ColumnIndex(column)
			if col < 0 {
				return fmt.Errorf("data set %q has no column %q", set, column)
			}
			values, err := columnValues(ds, col)
			if err != nil {
				return err
			}
			if out == "" {
				out = set + ".npy"
			}
			if err := writeNpy(out, values); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d values to %s\n", ds.Rows(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "Default Group", "data group name")
	cmd.Flags().StringVar(&set, "set", "", "data set name")
	cmd.Flags().StringVar(&column, "column", "", "column name")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <set>.npy)")
	_ = cmd.MarkFlagRequired("set")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

// columnValues reads a numeric column into a slice of its natural type.
func columnValues(ds *calvin.DataSet, col int) (any, error) {
	switch ds.ColumnType(col) {
	case calvin.ColumnFloat:
		return ds.ReadFloatColumn(col)
	case calvin.ColumnShort:
		return ds.ReadInt16Column(col)
	case calvin.ColumnUShort:
		return ds.ReadUInt16Column(col)
	case calvin.ColumnByte:
		return readColumn(ds, col, ds.ReadInt8)
	case calvin.ColumnUByte:
		return readColumn(ds, col, ds.ReadUInt8)
	case calvin.ColumnInt:
		return readColumn(ds, col, ds.ReadInt32)
	case calvin.ColumnUInt:
		return readColumn(ds, col, ds.ReadUInt32)
	default:
		return nil, fmt.Errorf("column %q is not numeric", ds.ColumnName(col))
	}
}

func readColumn[T any](ds *calvin.DataSet, col int, read func(row, col int) (T, error)) ([]T, error) {
	out := make([]T, ds.Rows())
	for r := range out {
		v, err := read(r, col)
		if err != nil {
			return nil, err
		}
		out[r] = v
	}
	return out, nil
}

func writeNpy(path string, values any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, values); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
