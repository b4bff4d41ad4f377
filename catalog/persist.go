package catalog

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"ridgedb/keykind"
	"ridgedb/rerr"
)

const (
	schemaDirName   = "schema"
	tableMetaName   = "table_meta"
	metaConfigName  = "meta_config.db"
)

// on-disk type tags for meta_config.db column records, exactly as
// spec.md §6 enumerates them (note F32 has no keykind.Kind counterpart:
// ridgedb never writes it, but Load tolerates reading it as a historical
// tag by rejecting with CorruptData rather than mis-decoding a later
// column's bytes).
const (
	tagI32    = byte(1)
	tagF32    = byte(2)
	tagF64    = byte(3)
	tagI64    = byte(4)
	tagString = byte(5)
)

func kindToTag(k keykind.Kind) (byte, error) {
	switch k {
	case keykind.I32:
		return tagI32, nil
	case keykind.I64:
		return tagI64, nil
	case keykind.F64:
		return tagF64, nil
	case keykind.String:
		return tagString, nil
	default:
		return 0, rerr.InvalidSchemaf("catalog: unknown column kind %v", k)
	}
}

func tagToKind(tag byte) (keykind.Kind, error) {
	switch tag {
	case tagI32:
		return keykind.I32, nil
	case tagI64:
		return keykind.I64, nil
	case tagF64:
		return keykind.F64, nil
	case tagString:
		return keykind.String, nil
	case tagF32:
		return 0, rerr.CorruptData("catalog: F32 columns are not supported by this build")
	default:
		return 0, rerr.CorruptDataf("catalog: unknown column type tag %d", tag)
	}
}

func (c *Catalog) schemaDir() string     { return filepath.Join(c.baseDir, schemaDirName) }
func (c *Catalog) tableMetaPath() string { return filepath.Join(c.schemaDir(), tableMetaName) }
func (c *Catalog) metaConfigPath() string { return filepath.Join(c.baseDir, metaConfigName) }

// Bootstrap creates schema/table_meta seeded with the two reserved entries
// if it does not yet exist, or reads the existing one otherwise, then loads
// meta_config.db into the in-memory maps. It is idempotent: calling it
// again on an already-bootstrapped baseDir just re-reads both files.
func (c *Catalog) Bootstrap() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.schemaDir(), 0o755); err != nil {
		return rerr.IoFailure("mkdir schema dir", err)
	}

	if _, err := os.Stat(c.tableMetaPath()); os.IsNotExist(err) {
		if err := c.writeTableMetaLocked([]reservedEntry{
			{id: ReservedTableIDVsRange, name: reservedTableIDVsRangeName},
			{id: ReservedTableVsColumn, name: reservedTableVsColumnName},
		}); err != nil {
			return err
		}
	} else if err != nil {
		return rerr.IoFailure("stat table_meta", err)
	}

	if err := c.readTableMetaLocked(); err != nil {
		return err
	}

	return c.loadLocked()
}

type reservedEntry struct {
	id   int32
	name string
}

func (c *Catalog) writeTableMetaLocked(entries []reservedEntry) error {
	f, err := os.Create(c.tableMetaPath())
	if err != nil {
		return rerr.IoFailure("create table_meta", err)
	}
	defer f.Close()

	if err := writeInt32(f, int32(len(entries))); err != nil {
		return rerr.IoFailure("write table_meta entry count", err)
	}
	for _, e := range entries {
		nameBytes := []byte(e.name)
		entrySize := int32(4 + len(nameBytes) + 4)
		if err := writeInt32(f, entrySize); err != nil {
			return rerr.IoFailure("write table_meta entry size", err)
		}
		if err := writeInt32(f, int32(len(nameBytes))); err != nil {
			return rerr.IoFailure("write table_meta name length", err)
		}
		if _, err := f.Write(nameBytes); err != nil {
			return rerr.IoFailure("write table_meta name", err)
		}
		if err := writeInt32(f, e.id); err != nil {
			return rerr.IoFailure("write table_meta id", err)
		}
	}
	return nil
}

func (c *Catalog) readTableMetaLocked() error {
	f, err := os.Open(c.tableMetaPath())
	if err != nil {
		return rerr.IoFailure("open table_meta", err)
	}
	defer f.Close()

	numEntries, err := readInt32(f)
	if err != nil {
		return rerr.IoFailure("read table_meta entry count", err)
	}

	for i := int32(0); i < numEntries; i++ {
		if _, err := readInt32(f); err != nil { // entry_size, unused by the reader
			return rerr.IoFailure("read table_meta entry size", err)
		}
		nameLen, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read table_meta name length", err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(f, nameBytes); err != nil {
			return rerr.IoFailure("read table_meta name", err)
		}
		id, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read table_meta id", err)
		}
		c.idToName[id] = string(nameBytes)
		c.nameToID[string(nameBytes)] = id
	}
	return nil
}

// Load re-parses meta_config.db into the in-memory name/id/column maps.
func (c *Catalog) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Catalog) loadLocked() error {
	f, err := os.Open(c.metaConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return rerr.IoFailure("open meta_config.db", err)
	}
	defer f.Close()

	for {
		_, err := readInt32(f) // total_len, unused: records are read field by field
		if err == io.EOF {
			break
		}
		if err != nil {
			return rerr.IoFailure("read meta_config total length", err)
		}

		id, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read meta_config table id", err)
		}
		nameLen, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read meta_config name length", err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(f, nameBytes); err != nil {
			return rerr.IoFailure("read meta_config name", err)
		}
		numColumns, err := readInt32(f)
		if err != nil {
			return rerr.IoFailure("read meta_config column count", err)
		}

		columns := make([]Column, numColumns)
		for i := int32(0); i < numColumns; i++ {
			tagByte := make([]byte, 1)
			if _, err := io.ReadFull(f, tagByte); err != nil {
				return rerr.IoFailure("read meta_config column tag", err)
			}
			kind, err := tagToKind(tagByte[0])
			if err != nil {
				return err
			}
			col := Column{Kind: kind}
			if kind == keykind.String {
				maxLen, err := readInt32(f)
				if err != nil {
					return rerr.IoFailure("read meta_config max length", err)
				}
				col.MaxLength = maxLen
			}
			columns[i] = col
		}

		name := string(nameBytes)
		c.nameToID[name] = id
		c.idToColumns[id] = columns
		c.idToName[id] = name
	}
	return nil
}

// appendTableLocked appends one record to meta_config.db, fsyncing once
// before close so the append is durable before the in-memory maps update.
func (c *Catalog) appendTableLocked(id int32, name string, columns []Column) error {
	nameBytes := []byte(name)

	body := make([]byte, 0, 4+4+len(nameBytes)+4+len(columns)*5)
	body = appendInt32(body, id)
	body = appendInt32(body, int32(len(nameBytes)))
	body = append(body, nameBytes...)
	body = appendInt32(body, int32(len(columns)))
	for _, col := range columns {
		tag, err := kindToTag(col.Kind)
		if err != nil {
			return err
		}
		body = append(body, tag)
		if col.Kind == keykind.String {
			body = appendInt32(body, col.MaxLength)
		}
	}

	f, err := os.OpenFile(c.metaConfigPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return rerr.IoFailure("open meta_config.db for append", err)
	}
	defer f.Close()

	if err := writeInt32(f, int32(len(body))); err != nil {
		return rerr.IoFailure("write meta_config total length", err)
	}
	if _, err := f.Write(body); err != nil {
		return rerr.IoFailure("write meta_config record", err)
	}
	return rerr.IoFailure("flush meta_config.db", f.Sync())
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

func appendInt32(buf []byte, v int32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	return append(buf, tmp[:]...)
}
