package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// newTable creates a table writer with the shared style applied.
func newTable(header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	if noColor {
		t.SetStyle(table.StyleLight)
	} else {
		style := t.Style()
		style.Color.Header = text.Colors{text.Bold, text.FgCyan}
		style.Format.Header = text.FormatDefault
	}
	if len(header) > 0 {
		t.AppendHeader(header)
	}
	return t
}

// render finishes a table in the configured output format. JSON output
// is handled by the caller via printJSON before building a table.
func render(t table.Writer, format string) {
	switch format {
	case "csv":
		t.RenderCSV()
	default:
		t.Render()
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
