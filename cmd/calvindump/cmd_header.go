package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/scigolib/calvin"
)

// Header tree as exported by "header --format msgpack".
type (
	paramDoc struct {
		Name  string `msgpack:"n"`
		Type  string `msgpack:"t"`
		Value string `msgpack:"v"`
	}
	genericDoc struct {
		FileTypeID   string       `msgpack:"type"`
		FileID       string       `msgpack:"id"`
		CreationTime string       `msgpack:"created"`
		Locale       string       `msgpack:"locale"`
		Params       []paramDoc   `msgpack:"params"`
		Parents      []genericDoc `msgpack:"parents,omitempty"`
	}
	columnDoc struct {
		Name  string `msgpack:"n"`
		Type  string `msgpack:"t"`
		Width int    `msgpack:"w"`
	}
	dataSetDoc struct {
		Name       string      `msgpack:"name"`
		Rows       int         `msgpack:"rows"`
		DataOffset uint32      `msgpack:"offset"`
		Columns    []columnDoc `msgpack:"columns"`
		Params     []paramDoc  `msgpack:"params"`
	}
	groupDoc struct {
		Name     string       `msgpack:"name"`
		DataSets []dataSetDoc `msgpack:"sets"`
	}
	fileDoc struct {
		Version int8       `msgpack:"version"`
		Generic genericDoc `msgpack:"generic"`
		Groups  []groupDoc `msgpack:"groups"`
	}
)

func paramDocs(l calvin.ParameterList) []paramDoc {
	out := make([]paramDoc, 0, l.Len())
	for name, v := range l.All() {
		out = append(out, paramDoc{Name: name, Type: v.Type().String(), Value: v.String()})
	}
	return out
}

func genericDocOf(h *calvin.GenericDataHeader) genericDoc {
	d := genericDoc{
		FileTypeID:   h.FileTypeID,
		FileID:       h.FileID,
		CreationTime: h.CreationTime,
		Locale:       h.Locale,
		Params:       paramDocs(h.Params),
	}
	for i := range h.Parents {
		d.Parents = append(d.Parents, genericDocOf(&h.Parents[i]))
	}
	return d
}

func fileDocOf(h *calvin.FileHeader) fileDoc {
	d := fileDoc{Version: h.Version, Generic: genericDocOf(&h.Generic)}
	for _, g := range h.Groups {
		gd := groupDoc{Name: g.Name}
		for _, ds := range g.DataSets {
			sd := dataSetDoc{Name: ds.Name, Rows: ds.RowCount, DataOffset: ds.DataOffset, Params: paramDocs(ds.Params)}
			for _, c := range ds.Columns {
				sd.Columns = append(sd.Columns, columnDoc{Name: c.Name, Type: c.Type.String(), Width: c.Width()})
			}
			gd.DataSets = append(gd.DataSets, sd)
		}
		d.Groups = append(d.Groups, gd)
	}
	return d
}

func newHeaderCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Print the header tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, done, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer done(&err)
			return writeHeader(cmd.OutOrStdout(), f.Header(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, msgpack or spew")
	return cmd
}

func writeHeader(out io.Writer, h *calvin.FileHeader, format string) error {
	switch format {
	case "text":
		writeHeaderText(out, h)
		return nil
	case "msgpack":
		enc := msgpack.NewEncoder(out)
		enc.SetSortMapKeys(true)
		return enc.Encode(fileDocOf(h))
	case "spew":
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, fileDocOf(h))
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeHeaderText(out io.Writer, h *calvin.FileHeader) {
	fmt.Fprintf(out, "Version: %d\n", h.Version)
	writeGenericText(out, &h.Generic, 0)
	for _, g := range h.Groups {
		fmt.Fprintf(out, "Group %q\n", g.Name)
		for _, ds := range g.DataSets {
			fmt.Fprintf(out, "  Data set %q: %d rows at 0x%x\n", ds.Name, ds.RowCount, ds.DataOffset)
			for i, c := range ds.Columns {
				fmt.Fprintf(out, "    column %d %q %s[%d]\n", i, c.Name, c.Type, c.Width())
			}
			for name, v := range ds.Params.All() {
				fmt.Fprintf(out, "    %s = %s\n", name, v)
			}
		}
	}
}

func writeGenericText(out io.Writer, h *calvin.GenericDataHeader, depth int) {
	pad := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%sFile type: %s\n", pad, h.FileTypeID)
	fmt.Fprintf(out, "%sFile ID: %s\n", pad, h.FileID)
	fmt.Fprintf(out, "%sCreated: %s\n", pad, h.CreationTime)
	fmt.Fprintf(out, "%sLocale: %s\n", pad, h.Locale)
	for name, v := range h.Params.All() {
		fmt.Fprintf(out, "%s  %s = %s\n", pad, name, v)
	}
	for i := range h.Parents {
		fmt.Fprintf(out, "%sParent %d:\n", pad, i)
		writeGenericText(out, &h.Parents[i], depth+1)
	}
}
