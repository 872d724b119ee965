package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tabfile/xport/pkg/xpt"
)

func main() {
	var (
		showCards = flag.Bool("cards", true, "show raw header cards")
		showVars  = flag.Bool("vars", true, "show the variable table")
		showRows  = flag.Int("rows", 5, "number of rows to decode (0 to skip, -1 for all)")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: xptdump [--cards] [--vars] [--rows N] <path.xpt>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	fmt.Printf("File: %s\n", path)

	if *showCards {
		fmt.Println()
		fmt.Println("Header cards:")
		if err := dumpCards(path); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	f, err := xpt.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()
	if err := f.ReadHeaders(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	lib, mem := f.Library(), f.Member()
	fmt.Println()
	fmt.Printf("Library: sas=%s os=%s created=%s modified=%s\n",
		orEmpty(lib.SASVersion), orEmpty(lib.OS), fmtStamp(lib.Created), fmtStamp(lib.Modified))
	fmt.Printf("Member: %s label=%q type=%s | record=%d bytes | variables=%d\n",
		mem.Name, mem.Label, orEmpty(mem.Type), f.RecordLength(), len(f.Variables()))

	if *showVars {
		fmt.Println()
		fmt.Println("Variables:")
		for _, v := range f.Variables() {
			fmt.Printf("  %3d %-8s %-9s len=%-3d pos=%-4d", v.Number, v.Name, v.Type, v.Length, v.Position)
			if fs := v.Format.String(); fs != "" {
				fmt.Printf(" format=%s", fs)
			}
			if is := v.Informat.String(); is != "" {
				fmt.Printf(" informat=%s", is)
			}
			if v.Label != "" {
				fmt.Printf("  %s", v.Label)
			}
			fmt.Println()
		}
	}

	if n := *showRows; n != 0 {
		fmt.Println()
		fmt.Println("Rows:")
		for i := 0; n < 0 || i < n; i++ {
			vals, err := f.ReadRow()
			if err == io.EOF {
				break
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			cells := make([]string, len(vals))
			for j, v := range vals {
				cells[j] = v.String()
			}
			fmt.Printf("  %4d  %s\n", i, strings.Join(cells, "  "))
		}
	}
}

// dumpCards prints the file card by card up to and including the
// observation header, the region where all the metadata lives. Bytes
// outside printable ASCII show as dots.
func dumpCards(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 80)
	for off := 0; ; off += 80 {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			fmt.Printf("  %06d  %s\n", off, sanitize(buf[:n]))
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
		if strings.HasPrefix(string(buf), "HEADER RECORD*******OBS") {
			return nil
		}
	}
}

func sanitize(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			out[i] = '.'
		} else {
			out[i] = c
		}
	}
	return string(out)
}

func fmtStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateTime)
}

func orEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
