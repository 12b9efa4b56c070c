package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"firestige.xyz/chatsniff/internal/chat/tracker"
	"firestige.xyz/chatsniff/internal/pipeline"
)

// printSummary writes per-run counters as a borderless table.
func printSummary(w io.Writer, stats pipeline.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Counter", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	row := func(name string, v uint64) {
		table.Append([]string{name, strconv.FormatUint(v, 10)})
	}
	row("packets", stats.Packets)
	row("frames", stats.Frames)
	row("no_payload", stats.NoPayload)
	row("malformed", stats.Malformed)
	for _, o := range tracker.Outcomes() {
		row(o.String(), stats.Outcome(o))
	}
	table.Render()
}
