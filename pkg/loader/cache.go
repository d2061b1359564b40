package loader

import (
	"fmt"
	"library_stats/pkg/database"
	"library_stats/pkg/table"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// DatabasePrefix marks a source identifier naming a stored dataset.
const DatabasePrefix = "db:"

type LoadFunc func(source string) (*table.Table, error)

// Cache memoizes loaded tables by source identifier. Each source is loaded at
// most once; failed loads are not remembered.
type Cache struct {
	load   LoadFunc
	tables map[string]*table.Table
	mu     sync.Mutex
}

func NewCache(load LoadFunc) *Cache {
	return &Cache{
		load:   load,
		tables: make(map[string]*table.Table),
	}
}

func (c *Cache) Load(source string) (*table.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[source]; ok {
		return t, nil
	}
	t, err := c.load(source)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d loan records from %s", t.Len(), source)
	c.tables[source] = t
	return t, nil
}

func (c *Cache) Forget(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, source)
}

// SourceLoader resolves "db:<name>" identifiers against db and everything
// else as a CSV path. db may be nil when only files are served.
func SourceLoader(db *gorm.DB) LoadFunc {
	return func(source string) (*table.Table, error) {
		name, ok := strings.CutPrefix(source, DatabasePrefix)
		if !ok {
			return LoadFile(source)
		}
		if db == nil {
			return nil, fmt.Errorf("%w: %s (no database configured)", ErrUnknownSource, source)
		}
		return database.LoadDataset(db, name)
	}
}
