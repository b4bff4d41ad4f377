package page

import (
	"encoding/binary"
	"math"

	"ridgedb/catalog"
	"ridgedb/keykind"
	"ridgedb/rerr"
)

// EncodeRow serializes values according to schema's column order into the
// exact bytes Append and DecodeRow agree on: little-endian fixed-width
// fields for I32/I64/F64, an int32 length prefix followed by UTF-8 bytes
// for strings.
func EncodeRow(schema []catalog.Column, values []keykind.Value) ([]byte, error) {
	if len(values) != len(schema) {
		return nil, rerr.InvalidSchemaf("page: expected %d values, got %d", len(schema), len(values))
	}

	size := 0
	for i, col := range schema {
		v := values[i]
		if v.Kind() != col.Kind {
			return nil, rerr.TypeMismatch(i, col.Kind, v.Kind())
		}
		switch col.Kind {
		case keykind.I32:
			size += 4
		case keykind.I64, keykind.F64:
			size += 8
		case keykind.String:
			size += 4 + len(v.Str())
		default:
			return nil, rerr.InvalidSchemaf("page: unknown column kind %v for %q", col.Kind, col.Name)
		}
	}

	buf := make([]byte, size)
	cursor := 0
	for i, col := range schema {
		v := values[i]
		switch col.Kind {
		case keykind.I32:
			binary.LittleEndian.PutUint32(buf[cursor:cursor+4], uint32(v.I32()))
			cursor += 4
		case keykind.I64:
			binary.LittleEndian.PutUint64(buf[cursor:cursor+8], uint64(v.I64()))
			cursor += 8
		case keykind.F64:
			binary.LittleEndian.PutUint64(buf[cursor:cursor+8], math.Float64bits(v.F64()))
			cursor += 8
		case keykind.String:
			s := v.Str()
			binary.LittleEndian.PutUint32(buf[cursor:cursor+4], uint32(int32(len(s))))
			cursor += 4
			copy(buf[cursor:cursor+len(s)], s)
			cursor += len(s)
		}
	}
	return buf, nil
}
