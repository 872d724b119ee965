package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/tabfile/xport/internal/catalog"
	"github.com/tabfile/xport/pkg/xpt"
)

// Paging bounds for the rows endpoint.
const (
	defaultRowLimit = 50
	maxRowLimit     = 1000
)

// Server exposes a read-only HTTP view of a dataset catalog.
type Server struct {
	catalog *catalog.Catalog
}

func NewServer(cat *catalog.Catalog) *Server {
	return &Server{catalog: cat}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	// Dataset API
	e.GET("/v1/datasets", s.handleListDatasets)
	e.GET("/v1/datasets/:name", s.handleGetDataset)
	e.GET("/v1/datasets/:name/rows", s.handleDatasetRows)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDatasets(c *echo.Context) error {
	if err := s.catalog.Refresh(); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
	sets := s.catalog.List()
	out := DatasetList{Datasets: make([]DatasetSummary, 0, len(sets))}
	for _, ds := range sets {
		out.Datasets = append(out.Datasets, summaryFromDataset(ds))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetDataset(c *echo.Context) error {
	f, ds, err := s.openDataset(c.Param("name"))
	if err != nil {
		return writeOpenError(c, err)
	}
	defer f.Close()

	detail := DatasetDetail{
		ID:           ds.ID,
		Name:         ds.Name,
		Size:         ds.Size,
		Modified:     ds.ModTime,
		Library:      libraryInfo(f.Library()),
		Member:       memberInfo(f.Member()),
		RecordLength: f.RecordLength(),
		Variables:    make([]VariableInfo, 0, len(f.Variables())),
	}
	for _, v := range f.Variables() {
		detail.Variables = append(detail.Variables, variableInfo(v))
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleDatasetRows(c *echo.Context) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	limit, err := queryInt(c, "limit", defaultRowLimit)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if offset < 0 {
		return writeBadRequest(c, "offset must not be negative")
	}
	if limit <= 0 || limit > maxRowLimit {
		return writeBadRequest(c, fmt.Sprintf("limit must be between 1 and %d", maxRowLimit))
	}

	f, ds, err := s.openDataset(c.Param("name"))
	if err != nil {
		return writeOpenError(c, err)
	}
	defer f.Close()

	page := RowsPage{
		Dataset: ds.Name,
		Offset:  offset,
		Limit:   limit,
		Columns: make([]string, 0, len(f.Variables())),
		Rows:    make([][]any, 0, min(limit, 64)),
	}
	for _, v := range f.Variables() {
		page.Columns = append(page.Columns, v.Name)
	}

	for skipped := 0; skipped < offset; skipped++ {
		if err := f.ScanRow(); err != nil {
			if err == io.EOF {
				page.EOF = true
				return c.JSON(http.StatusOK, page)
			}
			return writeUndecodable(c, fmt.Sprintf("decode rows: %v", err))
		}
	}
	for len(page.Rows) < limit {
		vals, err := f.ReadRow()
		if err == io.EOF {
			page.EOF = true
			break
		}
		if err != nil {
			return writeUndecodable(c, fmt.Sprintf("decode rows: %v", err))
		}
		row := make([]any, len(vals))
		for i, v := range vals {
			if v.Type == xpt.Character {
				row[i] = v.Str
			} else {
				row[i] = v.Num
			}
		}
		page.Rows = append(page.Rows, row)
	}
	return c.JSON(http.StatusOK, page)
}

// openDataset rescans the catalog directory before the lookup so a file
// dropped in after startup is visible without a separate list call.
func (s *Server) openDataset(name string) (*xpt.File, catalog.Dataset, error) {
	if err := s.catalog.Refresh(); err != nil {
		return nil, catalog.Dataset{}, err
	}
	return s.catalog.Open(name)
}

func writeOpenError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return writeNotFound(c, "dataset not found")
	case errors.Is(err, catalog.ErrBadDataset):
		return writeUndecodable(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}
