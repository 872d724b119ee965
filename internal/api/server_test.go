package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/tabfile/xport/internal/catalog"
)

// demoXPT builds a transport file with numeric X and 4-byte character
// NAME and three rows: (1, ONE), (2.5, TWO), (25.6, SIX).
func demoXPT() []byte {
	card := func(s string) []byte {
		b := bytes.Repeat([]byte{' '}, 80)
		copy(b, s)
		return b
	}
	namestr := func(typ, length, number uint16, name string, pos int32) []byte {
		ns := make([]byte, 140)
		binary.BigEndian.PutUint16(ns[0:2], typ)
		binary.BigEndian.PutUint16(ns[4:6], length)
		binary.BigEndian.PutUint16(ns[6:8], number)
		copy(ns[8:16], name)
		binary.BigEndian.PutUint32(ns[84:88], uint32(pos))
		return ns
	}
	stamp := "16FEB11:14:42:08"

	var buf bytes.Buffer
	buf.Write(card("HEADER RECORD*******LIBRARY HEADER RECORD!!!!!!!" + strings.Repeat("0", 30)))
	buf.Write(card("SAS     SAS     SASLIB  9.4     Linux" + strings.Repeat(" ", 27) + stamp))
	buf.Write(card(stamp))
	buf.Write(card("HEADER RECORD*******MEMBER  HEADER RECORD!!!!!!!000000000000000001600000000140"))
	buf.Write(card("HEADER RECORD*******DSCRPTR HEADER RECORD!!!!!!!" + strings.Repeat("0", 30)))
	buf.Write(card("SAS     DEMO    SASDATA 9.4     Linux" + strings.Repeat(" ", 27) + stamp))
	buf.Write(card(stamp + strings.Repeat(" ", 16) + "Demo rows" + strings.Repeat(" ", 31) + "DATA"))
	buf.Write(card("HEADER RECORD*******NAMESTR HEADER RECORD!!!!!!!0000000002" + strings.Repeat("0", 20)))

	buf.Write(namestr(1, 8, 1, "X", 0))
	buf.Write(namestr(2, 4, 2, "NAME", 8))
	buf.Write(bytes.Repeat([]byte{' '}, 40)) // pad namestrs to a card

	buf.Write(card("HEADER RECORD*******OBS     HEADER RECORD!!!!!!!" + strings.Repeat("0", 30)))
	row := func(bits uint64, name string) {
		var num [8]byte
		binary.BigEndian.PutUint64(num[:], bits)
		buf.Write(num[:])
		buf.WriteString(name)
	}
	row(0x4110000000000000, "ONE ")
	row(0x4128000000000000, "TWO ")
	row(0x421999999999999A, "SIX ")
	buf.Write(bytes.Repeat([]byte{' '}, 44))
	return buf.Bytes()
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "demo.xpt"), demoXPT(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.xpt"), []byte("no header here"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	server := NewServer(catalog.New(dir))
	e := echo.New()
	server.Register(e)
	return e
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestListDatasets(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var out DatasetList
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Datasets) != 2 {
		t.Fatalf("got %d datasets, want 2: %s", len(out.Datasets), rec.Body.String())
	}
	if out.Datasets[0].Name != "broken" || out.Datasets[1].Name != "demo" {
		t.Fatalf("unexpected names: %+v", out.Datasets)
	}
	for _, ds := range out.Datasets {
		if !strings.HasPrefix(ds.ID, "ds_") {
			t.Errorf("dataset %s has id %q", ds.Name, ds.ID)
		}
		if ds.Size == 0 {
			t.Errorf("dataset %s has zero size", ds.Name)
		}
	}
}

func TestGetDataset(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets/demo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var d DatasetDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if d.Name != "demo" {
		t.Errorf("name = %q", d.Name)
	}
	if d.Member.Name != "DEMO" || d.Member.Label != "Demo rows" || d.Member.Type != "DATA" {
		t.Errorf("member = %+v", d.Member)
	}
	if d.Library.SASVersion != "9.4" || d.Library.OS != "Linux" {
		t.Errorf("library = %+v", d.Library)
	}
	if d.Library.Created == nil {
		t.Error("library created timestamp missing")
	}
	if d.RecordLength != 12 {
		t.Errorf("record length = %d, want 12", d.RecordLength)
	}
	if len(d.Variables) != 2 {
		t.Fatalf("got %d variables: %+v", len(d.Variables), d.Variables)
	}
	x, name := d.Variables[0], d.Variables[1]
	if x.Name != "X" || x.Type != "numeric" || x.Length != 8 || x.Position != 0 {
		t.Errorf("first variable = %+v", x)
	}
	if name.Name != "NAME" || name.Type != "character" || name.Length != 4 || name.Position != 8 {
		t.Errorf("second variable = %+v", name)
	}
}

func TestGetDatasetNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets/nothere")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not_found_error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGetDatasetUndecodable(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets/broken")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "decode_error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDatasetRows(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets/demo/rows")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var page RowsPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Dataset != "demo" {
		t.Errorf("dataset = %q", page.Dataset)
	}
	if len(page.Columns) != 2 || page.Columns[0] != "X" || page.Columns[1] != "NAME" {
		t.Errorf("columns = %v", page.Columns)
	}
	if page.Offset != 0 || page.Limit != defaultRowLimit {
		t.Errorf("paging = offset %d limit %d", page.Offset, page.Limit)
	}
	if len(page.Rows) != 3 {
		t.Fatalf("got %d rows: %s", len(page.Rows), rec.Body.String())
	}
	if !page.EOF {
		t.Error("expected eof on final page")
	}
	if page.Rows[0][0] != 1.0 || page.Rows[0][1] != "ONE" {
		t.Errorf("row 0 = %v", page.Rows[0])
	}
	if page.Rows[1][0] != 2.5 || page.Rows[1][1] != "TWO" {
		t.Errorf("row 1 = %v", page.Rows[1])
	}
	if page.Rows[2][0] != 25.6 || page.Rows[2][1] != "SIX" {
		t.Errorf("row 2 = %v", page.Rows[2])
	}
}

func TestDatasetRowsPaging(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)

	rec := doGet(t, e, "/v1/datasets/demo/rows?offset=1&limit=1")
	var page RowsPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0][1] != "TWO" {
		t.Fatalf("middle page rows = %v", page.Rows)
	}
	if page.EOF {
		t.Error("middle page should not report eof")
	}

	rec = doGet(t, e, "/v1/datasets/demo/rows?offset=2&limit=5")
	page = RowsPage{}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0][1] != "SIX" {
		t.Fatalf("tail page rows = %v", page.Rows)
	}
	if !page.EOF {
		t.Error("tail page should report eof")
	}

	rec = doGet(t, e, "/v1/datasets/demo/rows?offset=9")
	page = RowsPage{}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Rows) != 0 || !page.EOF {
		t.Fatalf("past-the-end page = %+v", page)
	}

	rec = doGet(t, e, "/v1/datasets/demo/rows?limit=3")
	page = RowsPage{}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Rows) != 3 {
		t.Fatalf("full page rows = %v", page.Rows)
	}
	if page.EOF {
		t.Error("exactly-full page should not report eof")
	}
}

func TestDatasetRowsBadParams(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	for _, query := range []string{
		"offset=-1",
		"offset=abc",
		"limit=0",
		"limit=-5",
		"limit=1001",
		"limit=2.5",
	} {
		rec := doGet(t, e, "/v1/datasets/demo/rows?"+query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d body=%s", query, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "invalid_request_error") {
			t.Errorf("%s: unexpected body: %s", query, rec.Body.String())
		}
	}
}

func TestDatasetRowsNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doGet(t, e, "/v1/datasets/nothere/rows")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}
