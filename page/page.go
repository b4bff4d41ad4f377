// Package page implements ridgedb's slotted page: a fixed-size binary page
// that appends variable-length rows from the tail while a growing slot
// array near the header indexes them in insertion order.
//
// Layout (page size P, header size H, both configurable, defaults 4096/64):
//
//	[0, H)            reserved header, unused by this package
//	[H, H+4)          int32 LE row count N
//	[H+4, H+4+4N)     slot array: N int32 LE offsets, one per row
//	[slot[N-1], P)     row bytes, packed from the tail, most recent row first
//
// Row i occupies [slot[i], end_i) where end_i is P for i==0 and slot[i-1]
// otherwise, so slot[0] > slot[1] > ... > slot[N-1] and the slot array
// never overlaps row bytes. Rows are encoded per the table's column list
// in declaration order; strings are length-prefixed, fixed-width columns
// are little-endian.
//
// Grounded on original_source/RowData.rs's RawData::add_new_row and
// data_as_str, and cross-checked against the slot-directory discipline in
// ajg7-GengarDB/pkg/storage/slotted.go.
package page

import (
	"encoding/binary"
	"math"

	"ridgedb/catalog"
	"ridgedb/keykind"
	"ridgedb/rerr"
)

const (
	DefaultPageSize   = 4096
	DefaultHeaderSize = 64

	rowCountSize = 4
	slotSize     = 4
)

// Page is one slotted page of a table's data file.
type Page struct {
	SchemaName string
	PageID     uint64
	PageSize   int
	HeaderSize int
	Data       []byte
}

// New returns a zero-filled page with row count 0.
func New(schemaName string, pageSize, headerSize int, pageID uint64) *Page {
	return &Page{
		SchemaName: schemaName,
		PageID:     pageID,
		PageSize:   pageSize,
		HeaderSize: headerSize,
		Data:       make([]byte, pageSize),
	}
}

// Clone returns a deep copy of p, sharing no memory with it. The cache
// package uses this to hand callers a private page on every Get, so a
// caller mutating its copy (or a concurrent Insert appending to the
// original) can never observe the other's writes.
func (p *Page) Clone() *Page {
	data := make([]byte, len(p.Data))
	copy(data, p.Data)
	return &Page{
		SchemaName: p.SchemaName,
		PageID:     p.PageID,
		PageSize:   p.PageSize,
		HeaderSize: p.HeaderSize,
		Data:       data,
	}
}

// FromBytes wraps an existing on-disk page buffer without copying it.
func FromBytes(schemaName string, pageSize, headerSize int, pageID uint64, data []byte) *Page {
	return &Page{
		SchemaName: schemaName,
		PageID:     pageID,
		PageSize:   pageSize,
		HeaderSize: headerSize,
		Data:       data,
	}
}

func (p *Page) rowCountOffset() int { return p.HeaderSize }
func (p *Page) slotArrayOffset() int { return p.HeaderSize + rowCountSize }

// RowCount returns the number of rows currently appended to the page.
func (p *Page) RowCount() int {
	return int(int32(binary.LittleEndian.Uint32(p.Data[p.rowCountOffset() : p.rowCountOffset()+rowCountSize])))
}

func (p *Page) setRowCount(n int) {
	binary.LittleEndian.PutUint32(p.Data[p.rowCountOffset():p.rowCountOffset()+rowCountSize], uint32(int32(n)))
}

func (p *Page) slotOffset(i int) int {
	return p.slotArrayOffset() + i*slotSize
}

func (p *Page) slotValue(i int) int {
	off := p.slotOffset(i)
	return int(int32(binary.LittleEndian.Uint32(p.Data[off : off+slotSize])))
}

func (p *Page) setSlotValue(i, v int) {
	off := p.slotOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+slotSize], uint32(int32(v)))
}

// rowEnd is the exclusive byte position one past row i's bytes: P for the
// first row inserted (slot 0), or the previous row's start otherwise.
func (p *Page) rowEnd(i int) int {
	if i == 0 {
		return p.PageSize
	}
	return p.slotValue(i - 1)
}

// Append places row at the tail of the remaining free space and returns its
// slot index. It returns rerr.ErrPageFull (never truncates) if the row does
// not fit; the caller is expected to allocate a fresh page and retry.
func (p *Page) Append(row []byte) (slot int, err error) {
	n := p.RowCount()
	prevEnd := p.rowEnd(n)
	newRowStart := prevEnd - len(row)
	slotArrayEndAfter := p.slotArrayOffset() + (n+1)*slotSize

	if newRowStart < slotArrayEndAfter {
		return 0, rerr.ErrPageFull
	}

	copy(p.Data[newRowStart:prevEnd], row)
	p.setSlotValue(n, newRowStart)
	p.setRowCount(n + 1)
	return n, nil
}

// DecodeRow decodes the row stored at slot according to schema's column
// list, in declaration order.
func (p *Page) DecodeRow(slot int, schema []catalog.Column) ([]keykind.Value, error) {
	n := p.RowCount()
	if slot < 0 || slot >= n {
		return nil, rerr.CorruptDataf("page: slot %d out of range [0, %d)", slot, n)
	}

	start := p.slotValue(slot)
	end := p.rowEnd(slot)
	if start < 0 || end > p.PageSize || start > end {
		return nil, rerr.CorruptDataf("page: row bounds [%d, %d) invalid for page size %d", start, end, p.PageSize)
	}
	buf := p.Data[start:end]

	values := make([]keykind.Value, len(schema))
	cursor := 0
	for i, col := range schema {
		v, consumed, err := decodeColumn(buf, cursor, col)
		if err != nil {
			return nil, err
		}
		values[i] = v
		cursor += consumed
	}
	return values, nil
}

func decodeColumn(buf []byte, cursor int, col catalog.Column) (keykind.Value, int, error) {
	switch col.Kind {
	case keykind.I32:
		if cursor+4 > len(buf) {
			return keykind.Value{}, 0, rerr.CorruptDataf("page: truncated I32 column %q", col.Name)
		}
		return keykind.NewI32(int32(binary.LittleEndian.Uint32(buf[cursor : cursor+4]))), 4, nil
	case keykind.I64:
		if cursor+8 > len(buf) {
			return keykind.Value{}, 0, rerr.CorruptDataf("page: truncated I64 column %q", col.Name)
		}
		return keykind.NewI64(int64(binary.LittleEndian.Uint64(buf[cursor : cursor+8]))), 8, nil
	case keykind.F64:
		if cursor+8 > len(buf) {
			return keykind.Value{}, 0, rerr.CorruptDataf("page: truncated F64 column %q", col.Name)
		}
		bits := binary.LittleEndian.Uint64(buf[cursor : cursor+8])
		return keykind.NewF64(math.Float64frombits(bits)), 8, nil
	case keykind.String:
		if cursor+4 > len(buf) {
			return keykind.Value{}, 0, rerr.CorruptDataf("page: truncated length prefix for column %q", col.Name)
		}
		strLen := int(int32(binary.LittleEndian.Uint32(buf[cursor : cursor+4])))
		if strLen < 0 || cursor+4+strLen > len(buf) {
			return keykind.Value{}, 0, rerr.CorruptDataf("page: string column %q length %d overruns row", col.Name, strLen)
		}
		s := string(buf[cursor+4 : cursor+4+strLen])
		return keykind.NewString(s), 4 + strLen, nil
	default:
		return keykind.Value{}, 0, rerr.CorruptDataf("page: unknown column kind %v for %q", col.Kind, col.Name)
	}
}
