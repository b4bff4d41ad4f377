package engine

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"ridgedb/btree"
	"ridgedb/keykind"
	"ridgedb/rerr"
)

// on-disk kind tags for tagged checkpoint records, per SPEC_FULL.md §6.
const (
	ckptTagI32    = byte(1)
	ckptTagI64    = byte(2)
	ckptTagF64    = byte(3)
	ckptTagString = byte(4)
)

// isLegacyKind reports whether kind's checkpoint file is written in the
// original untagged 16-byte-record format (i32 key, i64 page_id, i32
// slot). I64 keys cannot round-trip through a 4-byte key field, so only
// I32 keeps the legacy shape; every other kind always uses the tagged
// format, per table rather than per engine, since one table's key kind has
// no bearing on another table's checkpoint file.
func isLegacyKind(kind keykind.Kind) bool { return kind == keykind.I32 }

// SaveAll walks every table's in-memory tree via the leaf chain (btree.Walk)
// and writes its checkpoint file, replacing the brute-force integer-range
// probe spec.md §9 calls out as a bug to fix.
func (e *Engine) SaveAll() error {
	e.mu.RLock()
	tables := make(map[string]*tableState, len(e.tables))
	for name, ts := range e.tables {
		tables[name] = ts
	}
	e.mu.RUnlock()

	for name, ts := range tables {
		if err := e.saveTable(name, ts); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) saveTable(name string, ts *tableState) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	type entry struct {
		key keykind.Value
		loc btree.Locator
	}
	var entries []entry
	ts.tree.Walk(func(key keykind.Value, loc btree.Locator) {
		entries = append(entries, entry{key: key, loc: loc})
	})

	f, err := os.Create(e.indexPath(name))
	if err != nil {
		return rerr.IoFailure("create checkpoint file", err)
	}
	defer f.Close()

	if err := writeInt32(f, int32(len(entries))); err != nil {
		return rerr.IoFailure("write checkpoint count", err)
	}

	legacy := isLegacyKind(ts.tree.Kind())
	for _, en := range entries {
		if !legacy {
			if err := writeTag(f, en.key.Kind()); err != nil {
				return err
			}
		}
		if err := writeKeyPayload(f, en.key); err != nil {
			return err
		}
		if err := writeInt64(f, int64(en.loc.PageID)); err != nil {
			return rerr.IoFailure("write checkpoint page id", err)
		}
		if err := writeInt32(f, en.loc.Slot); err != nil {
			return rerr.IoFailure("write checkpoint slot", err)
		}
	}
	return rerr.IoFailure("flush checkpoint file", f.Sync())
}

// LoadAll reads every user table's checkpoint file, if present, and
// reinserts each entry into a freshly constructed tree.
func (e *Engine) LoadAll() error {
	for _, name := range e.catalog.TableNames() {
		if err := e.loadTable(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadTable(name string) error {
	path := e.indexPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	ts, err := e.ensureTableState(name)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return rerr.IoFailure("open checkpoint file", err)
	}
	defer f.Close()

	count, err := readInt32(f)
	if err != nil {
		return rerr.IoFailure("read checkpoint count", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	legacy := isLegacyKind(ts.tree.Kind())
	for i := int32(0); i < count; i++ {
		key, err := readKeyEntry(f, ts.tree.Kind(), legacy)
		if err != nil {
			return err
		}
		pageID, err := readInt64(f)
		if err != nil {
			return rerr.IoFailure("read checkpoint page id", err)
		}
		slot, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read checkpoint slot", err)
		}
		ts.tree.Insert(key, btree.Locator{PageID: uint64(pageID), Slot: slot})
	}
	return nil
}

func writeTag(w io.Writer, kind keykind.Kind) error {
	var tag byte
	switch kind {
	case keykind.I32:
		tag = ckptTagI32
	case keykind.I64:
		tag = ckptTagI64
	case keykind.F64:
		tag = ckptTagF64
	case keykind.String:
		tag = ckptTagString
	default:
		return rerr.CorruptDataf("engine: unknown key kind %v", kind)
	}
	_, err := w.Write([]byte{tag})
	if err != nil {
		return rerr.IoFailure("write checkpoint tag", err)
	}
	return nil
}

func tagToKeyKind(tag byte) (keykind.Kind, error) {
	switch tag {
	case ckptTagI32:
		return keykind.I32, nil
	case ckptTagI64:
		return keykind.I64, nil
	case ckptTagF64:
		return keykind.F64, nil
	case ckptTagString:
		return keykind.String, nil
	default:
		return 0, rerr.CorruptDataf("engine: unknown checkpoint tag %d", tag)
	}
}

func writeKeyPayload(w io.Writer, key keykind.Value) error {
	switch key.Kind() {
	case keykind.I32:
		return writeInt32(w, key.I32())
	case keykind.I64:
		return writeInt64(w, key.I64())
	case keykind.F64:
		bits := int64(math.Float64bits(key.F64()))
		return writeInt64(w, bits)
	case keykind.String:
		s := key.Str()
		if err := writeInt32(w, int32(len(s))); err != nil {
			return err
		}
		_, err := w.Write([]byte(s))
		return err
	default:
		return rerr.CorruptDataf("engine: unknown key kind %v", key.Kind())
	}
}

func readKeyEntry(r io.Reader, treeKind keykind.Kind, legacy bool) (keykind.Value, error) {
	kind := treeKind
	if !legacy {
		tagByte := make([]byte, 1)
		if _, err := io.ReadFull(r, tagByte); err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint tag", err)
		}
		var err error
		kind, err = tagToKeyKind(tagByte[0])
		if err != nil {
			return keykind.Value{}, err
		}
	}

	switch kind {
	case keykind.I32:
		v, err := readInt32(r)
		if err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint I32 key", err)
		}
		return keykind.NewI32(v), nil
	case keykind.I64:
		v, err := readInt64(r)
		if err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint I64 key", err)
		}
		return keykind.NewI64(v), nil
	case keykind.F64:
		bits, err := readInt64(r)
		if err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint F64 key", err)
		}
		return keykind.NewF64(math.Float64frombits(uint64(bits))), nil
	case keykind.String:
		n, err := readInt32(r)
		if err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint string length", err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return keykind.Value{}, rerr.IoFailure("read checkpoint string bytes", err)
		}
		return keykind.NewString(string(buf)), nil
	default:
		return keykind.Value{}, rerr.CorruptDataf("engine: unknown key kind %v", kind)
	}
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}
