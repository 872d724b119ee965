package xpt

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// ReadRow decodes the next observation into one Value per variable, in
// file order. The returned slice is freshly allocated each call and owned
// by the caller. At the end of the data it returns io.EOF; a row cut short
// mid-field returns an error wrapping io.ErrUnexpectedEOF.
func (f *File) ReadRow() ([]Value, error) {
	if err := f.nextRow(); err != nil {
		return nil, err
	}
	vals := make([]Value, len(f.vars))
	for i := range f.vars {
		vals[i] = decodeField(&f.vars[i], f.row)
	}
	return vals, nil
}

// ScanRow decodes the next observation into the given destinations, one
// per variable in file order. Each destination must be a *float64 or a
// *string; mismatched kinds are coerced. A numeric value lands in a
// *string as its fixed six-decimal form (2.5 becomes "2.500000"); a
// character value lands in a *float64 via strconv.ParseFloat on the
// trimmed text, and text that is not a number is an error naming the
// variable. Supplying fewer destinations than variables discards the
// trailing fields; supplying more is an error. The row is consumed either
// way.
func (f *File) ScanRow(dest ...any) error {
	if !f.headersRead {
		return ErrHeadersNotRead
	}
	if len(dest) > len(f.vars) {
		return fmt.Errorf("scan: %d destinations for %d variables", len(dest), len(f.vars))
	}
	if err := f.nextRow(); err != nil {
		return err
	}
	for i, d := range dest {
		if err := scanField(&f.vars[i], f.row, d); err != nil {
			return err
		}
	}
	return nil
}

// nextRow reads the raw bytes of the next observation into the scratch
// buffer, distinguishing the end of data from a truncated row. The data
// section is padded with blanks to the final 80-byte card boundary, so a
// blank run that reaches the end of the stream is padding, not a row.
func (f *File) nextRow() error {
	if !f.headersRead {
		return ErrHeadersNotRead
	}
	if f.rowLen == 0 {
		return io.EOF
	}
	if gap := int(f.r.offset() % cardLen); gap != 0 {
		rest, err := f.r.peek(cardLen - gap + 1)
		if err == io.EOF && allBlank(rest) {
			if err := f.r.discard(len(rest)); err != nil {
				return fmt.Errorf("skip row padding: %w", err)
			}
			return io.EOF
		}
	}
	if err := f.r.readFull(f.row); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("read row %d: %w", f.rowsRead, err)
	}
	f.rowsRead++
	return nil
}

func decodeField(v *Variable, row []byte) Value {
	field := row[v.Position : v.Position+v.Length]
	if v.Type == Numeric {
		return Value{Type: Numeric, Num: decodeNumeric(field)}
	}
	return Value{Type: Character, Str: trimField(field)}
}

// decodeNumeric converts one numeric field. Fields declared shorter than
// 8 bytes hold a truncated IBM double and are zero-extended on the right.
func decodeNumeric(field []byte) float64 {
	var buf [8]byte
	copy(buf[:], field)
	return ibmFloat64(binary.BigEndian.Uint64(buf[:]))
}

func scanField(v *Variable, row []byte, dest any) error {
	field := row[v.Position : v.Position+v.Length]
	switch d := dest.(type) {
	case *float64:
		if v.Type == Numeric {
			*d = decodeNumeric(field)
			return nil
		}
		s := trimField(field)
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("scan %s: parse %q as number: %w", v.Name, s, err)
		}
		*d = n
	case *string:
		if v.Type == Character {
			*d = trimField(field)
			return nil
		}
		*d = strconv.FormatFloat(decodeNumeric(field), 'f', 6, 64)
	case nil:
		return fmt.Errorf("scan %s: nil destination", v.Name)
	default:
		return fmt.Errorf("scan %s: unsupported destination %T, want *float64 or *string", v.Name, d)
	}
	return nil
}

func allBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' {
			return false
		}
	}
	return true
}
