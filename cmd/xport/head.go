package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tabfile/xport/pkg/xpt"
)

const defaultTermWidth = 80

func headCmd() *cli.Command {
	var rows int64

	return &cli.Command{
		Name:  "head",
		Usage: "Print the first rows of a transport dataset",
		Flags: append(append(fileFlags(),
			&cli.Int64Flag{
				Name:        "rows",
				Aliases:     []string{"n"},
				Usage:       "number of rows to print",
				Value:       10,
				Destination: &rows,
			},
		), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyHeadConfig(c, cfg, &rows)
			if rows <= 0 {
				return cli.Exit("error: --rows must be positive", 1)
			}

			f, err := xpt.Open(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", filePath, err), 1)
			}
			defer func() { _ = f.Close() }()
			if err := f.ReadHeaders(); err != nil {
				return cli.Exit(fmt.Sprintf("error: decode %s: %v", filePath, err), 1)
			}

			table, err := readHead(f, int(rows))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: read rows: %v", err), 1)
			}

			mem := f.Member()
			title := mem.Name
			if mem.Label != "" {
				title += " (" + mem.Label + ")"
			}
			fmt.Printf("%s: %d variables, showing up to %d rows\n\n", title, len(f.Variables()), rows)

			width := 0
			if stdoutIsTTY() {
				width = terminalWidth()
			}
			printTable(os.Stdout, f.Variables(), table, width)
			return nil
		},
	}
}

// readHead decodes up to n rows into display cells.
func readHead(f *xpt.File, n int) ([][]string, error) {
	table := make([][]string, 0, n)
	for len(table) < n {
		vals, err := f.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = v.String()
		}
		table = append(table, cells)
	}
	return table, nil
}

// printTable writes an aligned column listing, numeric columns right
// aligned. Lines are cut at width columns when width is positive.
func printTable(w io.Writer, vars []xpt.Variable, table [][]string, width int) {
	widths := make([]int, len(vars))
	for i, v := range vars {
		widths[i] = len(v.Name)
	}
	for _, row := range table {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, pad func(i int, s string) string) {
		b.Reset()
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(i, cell))
		}
		line := strings.TrimRight(b.String(), " ")
		if width > 0 && len(line) > width {
			line = line[:width]
		}
		fmt.Fprintln(w, line)
	}

	names := make([]string, len(vars))
	dashes := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
		dashes[i] = strings.Repeat("-", widths[i])
	}
	left := func(i int, s string) string { return fmt.Sprintf("%-*s", widths[i], s) }
	aligned := func(i int, s string) string {
		if vars[i].Type == xpt.Numeric {
			return fmt.Sprintf("%*s", widths[i], s)
		}
		return fmt.Sprintf("%-*s", widths[i], s)
	}

	writeRow(names, left)
	writeRow(dashes, left)
	for _, row := range table {
		writeRow(row, aligned)
	}
}

func stdoutIsTTY() bool {
	st, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
