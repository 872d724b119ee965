// Package xpt decodes the SAS transport file format (XPT, versions 5/6).
//
// A transport file is a sequence of 80-byte card images: a fixed run of
// header and descriptor cards, a table of variable descriptors, then the
// observation rows packed back to back. Decoding is strictly streaming;
// memory use is bounded by the row length, never by the file size.
package xpt

import (
	"fmt"
	"io"
	"os"
)

// File is a decoding session over one transport stream. It is not safe
// for concurrent use.
type File struct {
	r *reader
	f *os.File

	lib    Library
	mem    Member
	vars   []Variable
	rowLen int

	row         []byte // scratch, one row
	rowsRead    int64
	headersRead bool
}

// Open opens a transport file for decoding. The caller must Close the
// returned file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	xf := OpenReader(f)
	xf.f = f
	return xf, nil
}

// OpenReader decodes a transport stream from any reader. Close is a no-op
// for files opened this way; the caller keeps ownership of r.
func OpenReader(r io.Reader) *File {
	return &File{r: newReader(r)}
}

// Close releases the underlying file, if Open created one.
func (f *File) Close() error {
	if f.f != nil {
		err := f.f.Close()
		f.f = nil
		return err
	}
	return nil
}

// ReadHeaders consumes the header prelude: the library cards, the member
// and descriptor cards, the namestr table and the observation card. It
// stops at the first card that is not what the sequence requires, wrapping
// the matching sentinel error (ErrNoLibraryHeader through
// ErrNoObservationHeader). On success the session is positioned at the
// first row. Calling it again after success is a no-op.
func (f *File) ReadHeaders() error {
	if f.headersRead {
		return nil
	}

	// Library header card, then two prelude records: SAS symbols, version
	// and OS plus the created timestamp, then the modified timestamp.
	if _, err := f.expectHeader(sigLibrary, ErrNoLibraryHeader); err != nil {
		return err
	}
	rec, err := f.r.readCard()
	if err != nil {
		return fmt.Errorf("read library record: %w", err)
	}
	f.lib = Library{
		SASVersion: trimField(rec[24:32]),
		OS:         trimField(rec[32:40]),
		Created:    parseTimestamp(rec[64:80]),
	}
	rec, err = f.r.readCard()
	if err != nil {
		return fmt.Errorf("read library record: %w", err)
	}
	f.lib.Modified = parseTimestamp(rec[0:16])

	// Member header card. Its sixth numeric field carries the namestr
	// record size: 140 everywhere except VAX/VMS, which wrote 136.
	hdr, err := f.expectHeader(sigMember, ErrNoMemberHeader)
	if err != nil {
		return err
	}
	nsSize, err := hdr.numField(5)
	if err != nil {
		return fmt.Errorf("namestr record size: %w", err)
	}
	if nsSize != namestrSize && nsSize != namestrSizeVAX {
		return fmt.Errorf("namestr record size %d: want %d or %d", nsSize, namestrSize, namestrSizeVAX)
	}

	// Descriptor header card, then two member records: dataset name,
	// label, type and timestamps.
	if _, err = f.expectHeader(sigDescriptor, ErrNoDescriptorHeader); err != nil {
		return err
	}
	rec, err = f.r.readCard()
	if err != nil {
		return fmt.Errorf("read member record: %w", err)
	}
	f.mem = Member{
		Name:       trimField(rec[8:16]),
		SASVersion: trimField(rec[24:32]),
		OS:         trimField(rec[32:40]),
		Created:    parseTimestamp(rec[64:80]),
	}
	rec, err = f.r.readCard()
	if err != nil {
		return fmt.Errorf("read member record: %w", err)
	}
	f.mem.Modified = parseTimestamp(rec[0:16])
	f.mem.Label = trimField(rec[32:72])
	f.mem.Type = trimField(rec[72:80])

	// Namestr header card. Its second numeric field is the variable count.
	hdr, err = f.expectHeader(sigNamestr, ErrNoNamestrHeader)
	if err != nil {
		return err
	}
	count, err := hdr.numField(1)
	if err != nil {
		return fmt.Errorf("variable count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("variable count %d out of range", count)
	}

	f.vars = make([]Variable, 0, count)
	f.rowLen = 0
	nsRec := make([]byte, nsSize)
	for i := range count {
		if err := f.r.readFull(nsRec); err != nil {
			return fmt.Errorf("read namestr %d: %w", i, err)
		}
		v, err := parseNamestr(nsRec)
		if err != nil {
			return fmt.Errorf("namestr %d: %w", i, err)
		}
		f.vars = append(f.vars, v)
		f.rowLen += v.Length
	}

	// Namestr records are packed; the table is padded out to the next
	// card boundary before the observation header.
	if pad := (cardLen - count*nsSize%cardLen) % cardLen; pad > 0 {
		if err := f.r.discard(pad); err != nil {
			return fmt.Errorf("skip namestr padding: %w", err)
		}
	}

	if _, err = f.expectHeader(sigObservation, ErrNoObservationHeader); err != nil {
		return err
	}

	// Field positions come from the file; make sure every one stays
	// inside the row before anything slices by them.
	for i := range f.vars {
		v := &f.vars[i]
		if v.Position < 0 || v.Position+v.Length > f.rowLen {
			return fmt.Errorf("variable %q at %d..%d outside record of %d bytes",
				v.Name, v.Position, v.Position+v.Length, f.rowLen)
		}
	}

	f.row = make([]byte, f.rowLen)
	f.headersRead = true
	return nil
}

// expectHeader reads one card and requires it to be a header card bearing
// the given signature, failing with the matching sentinel otherwise.
func (f *File) expectHeader(sig string, missing error) (headerCard, error) {
	off := f.r.offset()
	card, err := f.r.readCard()
	if err != nil {
		return headerCard{}, fmt.Errorf("%w: read card at offset %d: %w", missing, off, err)
	}
	hdr, ok := parseHeaderCard(card)
	if !ok || hdr.sig != sig {
		return headerCard{}, fmt.Errorf("%w: offset %d", missing, off)
	}
	return hdr, nil
}

// Variables returns the variable table in file order. The slice is shared
// with the session and must not be modified.
func (f *File) Variables() []Variable {
	return f.vars
}

// RecordLength is the byte length of one observation row: the sum of all
// variable lengths.
func (f *File) RecordLength() int {
	return f.rowLen
}

// Library returns the file-level metadata. Valid after ReadHeaders.
func (f *File) Library() Library {
	return f.lib
}

// Member returns the dataset-level metadata. Valid after ReadHeaders.
func (f *File) Member() Member {
	return f.mem
}
