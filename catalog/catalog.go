// Package catalog is ridgedb's table-metadata handler: it assigns table
// ids, remembers column schemas, and persists both to files under a base
// directory (schema/table_meta and meta_config.db). It is owned by a
// single engine.Engine value rather than a process-global singleton (per
// spec.md §9's redesign note), and is safe for concurrent use by multiple
// goroutines sharing that engine.
package catalog

import (
	"sync"

	"ridgedb/keykind"
	"ridgedb/rerr"
)

// Reserved table ids pre-populated by Bootstrap, per spec.md §3.
const (
	ReservedTableIDVsRange = int32(1)
	ReservedTableVsColumn  = int32(2)
)

const reservedTableIDVsRangeName = "TableIdVsRange"
const reservedTableVsColumnName = "tableVsColumn"

// Column is a single column in a table's schema: a name, a key kind, and
// whether it is the table's primary key. MaxLength bounds STRING columns
// for the on-disk schema record (spec.md §6); the page codec itself always
// writes an explicit length prefix regardless of this bound.
type Column struct {
	Name       string
	Kind       keykind.Kind
	PrimaryKey bool
	MaxLength  int32
}

// Catalog is the table-metadata handler described in spec.md §4.D.
type Catalog struct {
	baseDir string

	mu          sync.Mutex
	nameToID    map[string]int32
	idToColumns map[int32][]Column
	idToName    map[int32]string
}

// New constructs a Catalog rooted at baseDir. Call Bootstrap before first
// use; Bootstrap both creates a fresh catalog and re-opens an existing one.
func New(baseDir string) *Catalog {
	return &Catalog{
		baseDir:     baseDir,
		nameToID:    make(map[string]int32),
		idToColumns: make(map[int32][]Column),
		idToName:    make(map[int32]string),
	}
}

// AllocateTableID returns 1 + max(existing ids, 2), matching spec.md §3's
// assignment rule ("user tables start at id 3").
func (c *Catalog) AllocateTableID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocateTableIDLocked()
}

func (c *Catalog) allocateTableIDLocked() int32 {
	max := int32(2)
	for id := range c.idToColumns {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// AddTable validates name/columns, assigns no new id of its own (callers
// pass one, typically from AllocateTableID), appends a record to
// meta_config.db with a single flush, and updates the in-memory maps.
func (c *Catalog) AddTable(id int32, name string, columns []Column) error {
	if err := validate(name, columns); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.nameToID[name]; exists {
		return rerr.ErrTableExists
	}

	if err := c.appendTableLocked(id, name, columns); err != nil {
		return err
	}

	c.nameToID[name] = id
	c.idToColumns[id] = columns
	c.idToName[id] = name
	return nil
}

func validate(name string, columns []Column) error {
	if name == "" {
		return rerr.InvalidSchema("table name must not be empty")
	}
	if len(columns) == 0 {
		return rerr.InvalidSchema("table must have at least one column")
	}

	seenNames := make(map[string]struct{}, len(columns))
	primaryKeys := 0
	for _, col := range columns {
		if col.Name == "" {
			return rerr.InvalidSchema("column name must not be empty")
		}
		if _, dup := seenNames[col.Name]; dup {
			return rerr.InvalidSchemaf("duplicate column name %q", col.Name)
		}
		seenNames[col.Name] = struct{}{}
		if col.PrimaryKey {
			primaryKeys++
		}
	}
	if primaryKeys > 1 {
		return rerr.InvalidSchema("at most one column may be the primary key")
	}
	return nil
}

// LookupColumnsByName returns the column list for name, or (nil, false).
func (c *Catalog) LookupColumnsByName(name string) ([]Column, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.nameToID[name]
	if !ok {
		return nil, false
	}
	return c.idToColumns[id], true
}

// LookupID returns the table id for name, or (0, false).
func (c *Catalog) LookupID(name string) (int32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.nameToID[name]
	return id, ok
}

// TableNames returns every user table name known to the catalog, excluding
// the two reserved system entries seeded by Bootstrap. Used by
// engine.LoadAll to discover which tables have a checkpoint to restore.
func (c *Catalog) TableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.idToColumns))
	for id, name := range c.idToName {
		if id == ReservedTableIDVsRange || id == ReservedTableVsColumn {
			continue
		}
		names = append(names, name)
	}
	return names
}
