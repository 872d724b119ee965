package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tabfile/xport/pkg/xpt"
)

func exportCmd() *cli.Command {
	var (
		format  string
		outPath string
	)

	return &cli.Command{
		Name:  "export",
		Usage: "Export a transport dataset as CSV or JSON lines",
		Flags: append(append(fileFlags(),
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (csv, json)",
				Value:       "csv",
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output file (default stdout)",
				Destination: &outPath,
			},
		), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyExportConfig(c, cfg, &format)
			if format != "csv" && format != "json" {
				return cli.Exit(fmt.Sprintf("error: unsupported export format %q", format), 1)
			}

			f, err := xpt.Open(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", filePath, err), 1)
			}
			defer func() { _ = f.Close() }()
			if err := f.ReadHeaders(); err != nil {
				return cli.Exit(fmt.Sprintf("error: decode %s: %v", filePath, err), 1)
			}

			out := io.Writer(os.Stdout)
			if outPath != "" {
				of, err := os.Create(outPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: create %s: %v", outPath, err), 1)
				}
				defer func() { _ = of.Close() }()
				out = of
			}

			if format == "json" {
				err = exportJSON(out, f)
			} else {
				err = exportCSV(out, f)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: export: %v", err), 1)
			}
			return nil
		},
	}
}

// exportCSV writes a header row of variable names followed by one record
// per observation.
func exportCSV(w io.Writer, f *xpt.File) error {
	cw := csv.NewWriter(w)
	vars := f.Variables()
	hdr := make([]string, len(vars))
	for i, v := range vars {
		hdr[i] = v.Name
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for {
		vals, err := f.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportJSON streams one JSON object per observation, keyed by variable
// name.
func exportJSON(w io.Writer, f *xpt.File) error {
	enc := json.NewEncoder(w)
	vars := f.Variables()
	for {
		vals, err := f.ReadRow()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		obj := make(map[string]any, len(vals))
		for i, v := range vals {
			if v.Type == xpt.Character {
				obj[vars[i].Name] = v.Str
			} else {
				obj[vars[i].Name] = v.Num
			}
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
}
