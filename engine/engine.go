// Package engine is ridgedb's query facade: it owns the catalog, a
// per-table tree/file/cache registry, and the insert/select contract
// spec.md §4.F names. It replaces the original process-global catalog and
// table-registry singletons with a value any number of independent
// engines can own (spec.md §9's redesign note), so tests can run several
// engines without sharing state.
//
// Grounded on
// _examples/NikolasRummel-db-index-performance-evaluation/src/dbms/pager/pager.go's
// Pager, which owns one file and one page cache with no locking at all
// (single-threaded by construction). This package generalizes that single
// pager into a map of per-table state (tree, file, cache, write cursor),
// adding the one-lock-per-table that pager.go never needed, to close the
// page-cursor race spec.md §9 documents as a known gap.
package engine

import (
	"sync"
	"time"

	"ridgedb/btree"
	"ridgedb/cache"
	"ridgedb/catalog"
	"ridgedb/keykind"
	"ridgedb/metrics"
	"ridgedb/page"
	"ridgedb/rerr"
	"ridgedb/storage"
)

const defaultCacheCapacity = 64

// Options configures an Engine. The zero value selects spec.md §3's
// defaults (4096-byte pages, 64-byte headers, a 64-page cache per table).
type Options struct {
	PageSize      int
	HeaderSize    int
	CacheCapacity int
}

func (o Options) withDefaults() Options {
	if o.PageSize == 0 {
		o.PageSize = page.DefaultPageSize
	}
	if o.HeaderSize == 0 {
		o.HeaderSize = page.DefaultHeaderSize
	}
	if o.CacheCapacity == 0 {
		o.CacheCapacity = defaultCacheCapacity
	}
	return o
}

// tableState is the per-table state spec.md §4.F describes: a tree, the
// backing file, a page cache, and the tail-page write cursor. The file,
// cache and cursor are only touched under mu, and Insert holds mu for its
// whole body, so concurrent inserts on the same table cannot race on the
// cursor, resolving spec.md §9's "Concurrency correctness" design note
// rather than leaving it a documented gap. The tree carries its own
// per-node locks; Select searches it without taking mu.
type tableState struct {
	mu sync.Mutex

	columns  []catalog.Column
	pkColumn int

	tree  keyTree
	file  *storage.TableFile
	cache *cache.LRU[uint64, *page.Page]

	tailPageID   uint64
	tailRowCount int
}

// Engine is the query facade. The zero value is not usable; construct
// with Open.
type Engine struct {
	baseDir string
	opts    Options
	catalog *catalog.Catalog

	mu     sync.RWMutex
	tables map[string]*tableState
}

// Open bootstraps the catalog rooted at baseDir and returns a ready Engine.
func Open(baseDir string, opts Options) (*Engine, error) {
	cat := catalog.New(baseDir)
	if err := cat.Bootstrap(); err != nil {
		return nil, err
	}
	return &Engine{
		baseDir: baseDir,
		opts:    opts.withDefaults(),
		catalog: cat,
		tables:  make(map[string]*tableState),
	}, nil
}

// CreateTable registers a new table in the catalog. Per-table tree/file/
// cache state is created lazily on first Insert or Select, per spec.md
// §4.F's "Per-table state is created lazily on first insert."
func (e *Engine) CreateTable(name string, columns []catalog.Column) error {
	id := e.catalog.AllocateTableID()
	return e.catalog.AddTable(id, name, columns)
}

func primaryKeyIndex(columns []catalog.Column) int {
	for i, c := range columns {
		if c.PrimaryKey {
			return i
		}
	}
	return 0
}

// ensureTableState returns the lazily-created tree/file/cache bundle for
// name, looking up its schema in the catalog on first access.
func (e *Engine) ensureTableState(name string) (*tableState, error) {
	e.mu.RLock()
	ts, ok := e.tables[name]
	e.mu.RUnlock()
	if ok {
		return ts, nil
	}

	columns, ok := e.catalog.LookupColumnsByName(name)
	if !ok {
		return nil, rerr.TableNotFound(name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ts, ok := e.tables[name]; ok {
		return ts, nil
	}

	file, err := storage.Open(e.dataPath(name), name, e.opts.PageSize, e.opts.HeaderSize)
	if err != nil {
		return nil, err
	}

	pk := primaryKeyIndex(columns)
	ts = &tableState{
		columns:  columns,
		pkColumn: pk,
		tree:     newKeyTree(columns[pk].Kind),
		file:     file,
		cache:    cache.New[uint64, *page.Page](e.opts.CacheCapacity, name),
	}

	count, err := file.PageCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		ts.tailPageID = count - 1
		tail, err := file.ReadPage(ts.tailPageID)
		if err != nil {
			return nil, err
		}
		ts.tailRowCount = tail.RowCount()
	}

	e.tables[name] = ts
	return ts, nil
}

func (e *Engine) dataPath(table string) string      { return e.baseDir + "/" + table + ".dat" }
func (e *Engine) indexPath(table string) string      { return e.baseDir + "/" + table + "_btree.idx" }

// CreateRow validates values against table's schema and encodes them into
// row bytes ready for Insert.
func (e *Engine) CreateRow(table string, values []keykind.Value) ([]byte, error) {
	columns, ok := e.catalog.LookupColumnsByName(table)
	if !ok {
		return nil, rerr.TableNotFound(table)
	}
	return page.EncodeRow(columns, values)
}

// Insert appends row to table's tail page, indexing it under primaryKey,
// retrying once on a fresh page if the tail page is full.
func (e *Engine) Insert(table string, primaryKey keykind.Value, row []byte) error {
	start := time.Now()
	defer func() { metrics.InsertDuration.WithLabelValues(table).Observe(time.Since(start).Seconds()) }()

	ts, err := e.ensureTableState(table)
	if err != nil {
		return err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	tail, err := ts.loadTailLocked()
	if err != nil {
		return err
	}

	slot, err := tail.Append(row)
	if err != nil {
		fresh, ferr := ts.file.NewPage()
		if ferr != nil {
			return ferr
		}
		slot, err = fresh.Append(row)
		if err != nil {
			return rerr.ErrRowTooLarge
		}
		ts.tailPageID = fresh.PageID
		ts.tailRowCount = 0
		tail = fresh
	}

	if err := ts.file.WritePage(tail); err != nil {
		return err
	}
	ts.cache.Put(tail.PageID, tail)

	ts.tree.Insert(primaryKey, btree.Locator{PageID: tail.PageID, Slot: int32(slot)})
	ts.tailRowCount = slot + 1
	return nil
}

// loadTailLocked returns the current tail page, preferring the cache.
func (ts *tableState) loadTailLocked() (*page.Page, error) {
	if p, ok := ts.cache.Get(ts.tailPageID); ok {
		return p, nil
	}
	p, err := ts.file.ReadPage(ts.tailPageID)
	if err != nil {
		return nil, err
	}
	ts.cache.Put(p.PageID, p)
	return p, nil
}

// Select looks up primaryKey in table's tree and decodes the located row.
func (e *Engine) Select(table string, primaryKey keykind.Value) ([]keykind.Value, bool, error) {
	start := time.Now()
	defer func() { metrics.SelectDuration.WithLabelValues(table).Observe(time.Since(start).Seconds()) }()

	ts, err := e.ensureTableState(table)
	if err != nil {
		return nil, false, err
	}

	loc, found := ts.tree.Search(primaryKey)
	if !found {
		return nil, false, nil
	}

	ts.mu.Lock()
	p, ok := ts.cache.Get(loc.PageID)
	if !ok {
		var err error
		p, err = ts.file.ReadPage(loc.PageID)
		if err != nil {
			ts.mu.Unlock()
			return nil, false, err
		}
		ts.cache.Put(p.PageID, p)
	}
	ts.mu.Unlock()

	values, err := p.DecodeRow(int(loc.Slot), ts.columns)
	if err != nil {
		return nil, false, err
	}
	return values, true, nil
}
