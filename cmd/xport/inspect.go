package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tabfile/xport/pkg/xpt"
)

type inspectLibrary struct {
	SASVersion string `json:"sas_version,omitempty"`
	OS         string `json:"os,omitempty"`
	Created    string `json:"created,omitempty"`
	Modified   string `json:"modified,omitempty"`
}

type inspectMember struct {
	Name       string `json:"name"`
	Label      string `json:"label,omitempty"`
	Type       string `json:"type,omitempty"`
	SASVersion string `json:"sas_version,omitempty"`
	OS         string `json:"os,omitempty"`
	Created    string `json:"created,omitempty"`
	Modified   string `json:"modified,omitempty"`
}

type inspectVariable struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type"`
	Length   int    `json:"length"`
	Position int    `json:"position"`
	Format   string `json:"format,omitempty"`
	Informat string `json:"informat,omitempty"`
}

type inspectOutput struct {
	File         string            `json:"file"`
	Size         int64             `json:"size"`
	Library      inspectLibrary    `json:"library"`
	Member       inspectMember     `json:"member"`
	RecordLength int               `json:"record_length"`
	Variables    []inspectVariable `json:"variables"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the contents of a SAS transport file",
		Flags: append(append(fileFlags(),
			&cli.BoolFlag{Name: "json", Usage: "emit metadata as JSON", Destination: &asJSON},
		), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			applyLoggingConfig(c, LoadConfig())

			stat, err := os.Stat(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat %q: %v", filePath, err), 1)
			}
			if stat.IsDir() {
				return cli.Exit("error: xport inspect expects a transport file, not a directory", 1)
			}

			f, err := xpt.Open(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", filePath, err), 1)
			}
			defer func() { _ = f.Close() }()
			if err := f.ReadHeaders(); err != nil {
				return cli.Exit(fmt.Sprintf("error: decode %s: %v", filePath, err), 1)
			}

			if asJSON {
				return writeInspectJSON(os.Stdout, stat, f)
			}
			printInspect(stat, f)
			return nil
		},
	}
}

func printInspect(stat os.FileInfo, f *xpt.File) {
	lib, mem := f.Library(), f.Member()

	fmt.Printf("XPORT Inspect: %s\n", filePath)
	fmt.Printf("File: %s (%s)\n", filepath.Base(filePath), formatBytes(uint64(stat.Size())))
	fmt.Printf("Library: SAS %s on %s%s\n", orDash(lib.SASVersion), orDash(lib.OS), stampSuffix(lib.Created))
	member := mem.Name
	if mem.Label != "" {
		member += " (" + mem.Label + ")"
	}
	if mem.Type != "" {
		member += " type " + mem.Type
	}
	fmt.Printf("Member: %s%s\n", member, stampSuffix(mem.Created))
	fmt.Printf("Record length: %d bytes\n\n", f.RecordLength())

	vars := f.Variables()
	nameW, fmtW := len("NAME"), len("FORMAT")
	for _, v := range vars {
		nameW = max(nameW, len(v.Name))
		fmtW = max(fmtW, len(v.Format.String()))
	}
	fmt.Printf("%4s  %-*s  %-9s  %4s  %4s  %-*s  %s\n", "#", nameW, "NAME", "TYPE", "LEN", "POS", fmtW, "FORMAT", "LABEL")
	for _, v := range vars {
		fmt.Printf("%4d  %-*s  %-9s  %4d  %4d  %-*s  %s\n",
			v.Number, nameW, v.Name, v.Type, v.Length, v.Position, fmtW, v.Format, v.Label)
	}
}

func writeInspectJSON(w io.Writer, stat os.FileInfo, f *xpt.File) error {
	lib, mem := f.Library(), f.Member()
	out := inspectOutput{
		File: filePath,
		Size: stat.Size(),
		Library: inspectLibrary{
			SASVersion: lib.SASVersion,
			OS:         lib.OS,
			Created:    stamp(lib.Created),
			Modified:   stamp(lib.Modified),
		},
		Member: inspectMember{
			Name:       mem.Name,
			Label:      mem.Label,
			Type:       mem.Type,
			SASVersion: mem.SASVersion,
			OS:         mem.OS,
			Created:    stamp(mem.Created),
			Modified:   stamp(mem.Modified),
		},
		RecordLength: f.RecordLength(),
		Variables:    make([]inspectVariable, 0, len(f.Variables())),
	}
	for _, v := range f.Variables() {
		out.Variables = append(out.Variables, inspectVariable{
			Number:   v.Number,
			Name:     v.Name,
			Label:    v.Label,
			Type:     v.Type.String(),
			Length:   v.Length,
			Position: v.Position,
			Format:   v.Format.String(),
			Informat: v.Informat.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func stampSuffix(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ", created " + t.Format(time.DateTime)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
