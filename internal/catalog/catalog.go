// Package catalog indexes a directory of SAS transport files by dataset
// name, for the CLI listing and the HTTP server.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabfile/xport/pkg/xpt"
)

var (
	ErrNotFound   = errors.New("catalog: dataset not found")
	ErrBadDataset = errors.New("catalog: dataset not decodable")
)

// Dataset is one transport file registered in the catalog. Name is the
// file name without its extension; ID stays stable across refreshes.
type Dataset struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

type Catalog struct {
	dir string

	mu     sync.RWMutex
	byName map[string]Dataset
	ids    map[string]string // path -> assigned ID
}

func New(dir string) *Catalog {
	return &Catalog{
		dir:    dir,
		byName: make(map[string]Dataset),
		ids:    make(map[string]string),
	}
}

func (c *Catalog) Dir() string { return c.dir }

// Refresh rescans the directory for *.xpt files (any case), replacing the
// previous listing. Entries that disappeared are dropped; entries that
// remain keep their IDs.
func (c *Catalog) Refresh() error {
	st, err := os.Stat(c.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", c.dir)
	}
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	byName := make(map[string]Dataset, len(ents))
	ids := make(map[string]string, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".xpt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, name)
		id, ok := c.ids[path]
		if !ok {
			id = "ds_" + uuid.NewString()
		}
		ids[path] = id
		byName[strings.TrimSuffix(name, filepath.Ext(name))] = Dataset{
			ID:      id,
			Name:    strings.TrimSuffix(name, filepath.Ext(name)),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
	c.byName = byName
	c.ids = ids
	return nil
}

// List returns the registered datasets sorted by name.
func (c *Catalog) List() []Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Dataset, 0, len(c.byName))
	for _, ds := range c.byName {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Get(name string) (Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ds, ok := c.byName[name]
	return ds, ok
}

// Open opens the named dataset and reads its headers, so the returned
// session is ready for row decoding. The caller must Close it.
func (c *Catalog) Open(name string) (*xpt.File, Dataset, error) {
	ds, ok := c.Get(name)
	if !ok {
		return nil, Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f, err := xpt.Open(ds.Path)
	if err != nil {
		return nil, Dataset{}, err
	}
	if err := f.ReadHeaders(); err != nil {
		_ = f.Close()
		return nil, Dataset{}, fmt.Errorf("%w: %s: %w", ErrBadDataset, ds.Name, err)
	}
	return f, ds, nil
}
