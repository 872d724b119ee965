package xpt

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// VarType is the storage type of a variable, as declared in its namestr
// record.
type VarType uint16

const (
	Numeric   VarType = 1
	Character VarType = 2
)

func (t VarType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Character:
		return "character"
	default:
		return fmt.Sprintf("type(%d)", uint16(t))
	}
}

// Format names a SAS display format or informat attached to a variable.
// The name is carried verbatim; no format interpretation happens here.
type Format struct {
	Name     string
	Length   int
	Decimals int
}

// String renders the format in SAS notation, for example BEST12. or 8.2.
// An unset format renders as the empty string.
func (f Format) String() string {
	if f.Name == "" && f.Length == 0 && f.Decimals == 0 {
		return ""
	}
	s := f.Name
	if f.Length > 0 {
		s += strconv.Itoa(f.Length)
	}
	s += "."
	if f.Decimals > 0 {
		s += strconv.Itoa(f.Decimals)
	}
	return s
}

// Variable describes one column of the member dataset.
type Variable struct {
	Name     string
	Label    string
	Type     VarType
	Length   int // bytes the field occupies in each row
	Number   int // declared 1-based position
	Position int // byte offset of the field within a row
	Format   Format
	Informat Format
}

// Namestr record sizes. Files written on VAX/VMS use the short form.
const (
	namestrSize    = 140
	namestrSizeVAX = 136
)

// parseNamestr decodes one variable descriptor record. The record is 140
// bytes (136 on VAX); the leading field layout is identical in both forms,
// only the reserved tail differs.
func parseNamestr(rec []byte) (Variable, error) {
	typ := VarType(binary.BigEndian.Uint16(rec[0:2]))
	name := trimField(rec[8:16])
	if typ != Numeric && typ != Character {
		return Variable{}, fmt.Errorf("variable %q has unknown type %d", name, uint16(typ))
	}
	return Variable{
		Name:   name,
		Label:  trimField(rec[16:56]),
		Type:   typ,
		Length: int(binary.BigEndian.Uint16(rec[4:6])),
		Number: int(binary.BigEndian.Uint16(rec[6:8])),
		Format: Format{
			Name:     trimField(rec[56:64]),
			Length:   int(binary.BigEndian.Uint16(rec[64:66])),
			Decimals: int(binary.BigEndian.Uint16(rec[66:68])),
		},
		Informat: Format{
			Name:     trimField(rec[72:80]),
			Length:   int(binary.BigEndian.Uint16(rec[80:82])),
			Decimals: int(binary.BigEndian.Uint16(rec[82:84])),
		},
		Position: int(int32(binary.BigEndian.Uint32(rec[84:88]))),
	}, nil
}
