package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newHexCmd() *cobra.Command {
	var offset int64
	var length int
	cmd := &cobra.Command{
		Use:   "hex <file>",
		Short: "Dump raw bytes at an offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpHex(cmd.OutOrStdout(), args[0], offset, length)
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "offset in file to start dumping from")
	cmd.Flags().IntVar(&length, "length", 128, "number of bytes to dump")
	return cmd
}

func dumpHex(out io.Writer, path string, offset int64, length int) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	size := fi.Size()
	if offset < 0 || offset >= size {
		return fmt.Errorf("invalid offset %d (file size %d)", offset, size)
	}
	if length < 1 {
		return fmt.Errorf("invalid length %d", length)
	}
	n := min(int64(length), size-offset)

	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return err
	}
	fmt.Fprintf(out, "Dumping %d bytes at offset 0x%x (%d) of %s (size: %d bytes):\n", n, offset, offset, path, size)
	writeHex(out, buf, offset)
	return nil
}

// writeHex prints buf 16 bytes per line with an ASCII column.
func writeHex(out io.Writer, buf []byte, base int64) {
	for i := 0; i < len(buf); i += 16 {
		chunk := buf[i:min(i+16, len(buf))]
		fmt.Fprintf(out, "%08x: ", base+int64(i))
		for j := range 16 {
			if j < len(chunk) {
				fmt.Fprintf(out, "%02x ", chunk[j])
			} else {
				fmt.Fprint(out, "   ")
			}
			if j == 7 {
				fmt.Fprint(out, " ")
			}
		}
		fmt.Fprint(out, " |")
		for _, b := range chunk {
			if b >= 32 && b <= 126 {
				fmt.Fprintf(out, "%c", b)
			} else {
				fmt.Fprint(out, ".")
			}
		}
		fmt.Fprintln(out, "|")
	}
}
