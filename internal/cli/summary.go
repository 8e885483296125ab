package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/SmitUplenchwar2687/relval/internal/stream"
)

// printSummary renders the run summary as a table on w.
func printSummary(w io.Writer, policy string, s *stream.Summary) error {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Policy", policy},
		{"Read", strconv.Itoa(s.Read)},
		{"Released", strconv.Itoa(s.Released)},
		{"Rejected", strconv.Itoa(s.Rejected)},
		{"Diverted", strconv.Itoa(s.Diverted)},
		{"Dropped", strconv.Itoa(s.Dropped)},
		{"Divert errors", strconv.Itoa(s.DivertErrors)},
		{"Release span", s.Span().String()},
		{"Max lag", s.MaxLag.String()},
		{"Wall time", s.WallDuration.Round(time.Millisecond).String()},
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
