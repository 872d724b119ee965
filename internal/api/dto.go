package api

import (
	"time"

	"github.com/tabfile/xport/internal/catalog"
	"github.com/tabfile/xport/pkg/xpt"
)

type DatasetList struct {
	Datasets []DatasetSummary `json:"datasets"`
}

type DatasetSummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DatasetDetail is a summary plus the metadata decoded from the file
// headers.
type DatasetDetail struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Size         int64          `json:"size"`
	Modified     time.Time      `json:"modified"`
	Library      LibraryInfo    `json:"library"`
	Member       MemberInfo     `json:"member"`
	RecordLength int            `json:"record_length"`
	Variables    []VariableInfo `json:"variables"`
}

type LibraryInfo struct {
	SASVersion string     `json:"sas_version,omitempty"`
	OS         string     `json:"os,omitempty"`
	Created    *time.Time `json:"created,omitempty"`
	Modified   *time.Time `json:"modified,omitempty"`
}

type MemberInfo struct {
	Name       string     `json:"name"`
	Label      string     `json:"label,omitempty"`
	Type       string     `json:"type,omitempty"`
	SASVersion string     `json:"sas_version,omitempty"`
	OS         string     `json:"os,omitempty"`
	Created    *time.Time `json:"created,omitempty"`
	Modified   *time.Time `json:"modified,omitempty"`
}

type VariableInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type"`
	Length   int    `json:"length"`
	Position int    `json:"position"`
	Format   string `json:"format,omitempty"`
	Informat string `json:"informat,omitempty"`
}

// RowsPage is one window of decoded observations. Rows holds one slice
// per observation with float64 or string cells in Columns order; EOF is
// set when the data ended inside the requested window.
type RowsPage struct {
	Dataset string   `json:"dataset"`
	Columns []string `json:"columns"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	Rows    [][]any  `json:"rows"`
	EOF     bool     `json:"eof"`
}

type ErrorInfo struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

func summaryFromDataset(ds catalog.Dataset) DatasetSummary {
	return DatasetSummary{
		ID:       ds.ID,
		Name:     ds.Name,
		Size:     ds.Size,
		Modified: ds.ModTime,
	}
}

func libraryInfo(lib xpt.Library) LibraryInfo {
	return LibraryInfo{
		SASVersion: lib.SASVersion,
		OS:         lib.OS,
		Created:    timePtr(lib.Created),
		Modified:   timePtr(lib.Modified),
	}
}

func memberInfo(mem xpt.Member) MemberInfo {
	return MemberInfo{
		Name:       mem.Name,
		Label:      mem.Label,
		Type:       mem.Type,
		SASVersion: mem.SASVersion,
		OS:         mem.OS,
		Created:    timePtr(mem.Created),
		Modified:   timePtr(mem.Modified),
	}
}

func variableInfo(v xpt.Variable) VariableInfo {
	return VariableInfo{
		Name:     v.Name,
		Label:    v.Label,
		Type:     v.Type.String(),
		Length:   v.Length,
		Position: v.Position,
		Format:   v.Format.String(),
		Informat: v.Informat.String(),
	}
}

// timePtr drops unparseable (zero) timestamps from the JSON output.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
