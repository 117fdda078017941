package scanner

import (
	"database/sql"
	"time"
)

// MapScanner stores one column of the current row into Dest under the
// column name. Dest is swapped per row by the caller.
type MapScanner struct {
	Dest   map[string]any
	Column *sql.ColumnType
	Name   string
}

func (s *MapScanner) Scan(src any) error {
	s.Dest[s.Name] = Normalize(s.Column, src)
	return nil
}

// SliceScanner stores one column of the current row into Dest[Index].
type SliceScanner struct {
	Dest   []any
	Column *sql.ColumnType
	Index  int
}

func (s *SliceScanner) Scan(src any) error {
	s.Dest[s.Index] = Normalize(s.Column, src)
	return nil
}

// Normalize converts raw driver values into plain Go values: byte slices
// become strings (drivers reuse their backing arrays between fetches),
// Null* wrappers collapse to value or nil.
func Normalize(col *sql.ColumnType, src any) any {
	switch v := src.(type) {
	case nil:
		return nil
	case sql.RawBytes:
		return bytesValue(col, []byte(v))
	case []byte:
		return bytesValue(col, v)
	case sql.NullBool:
		if v.Valid {
			return v.Bool
		}
		return nil
	case sql.NullByte:
		if v.Valid {
			return v.Byte
		}
		return nil
	case sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
		return nil
	case sql.NullInt16:
		if v.Valid {
			return v.Int16
		}
		return nil
	case sql.NullInt32:
		if v.Valid {
			return v.Int32
		}
		return nil
	case sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
		return nil
	case sql.NullString:
		if v.Valid {
			return v.String
		}
		return nil
	case sql.NullTime:
		if v.Valid {
			return v.Time
		}
		return nil
	case time.Time:
		return v
	default:
		return src
	}
}

// bytesValue copies true binary columns and turns everything else (text,
// decimals) into string. Drivers reuse the backing array between fetches.
func bytesValue(col *sql.ColumnType, b []byte) any {
	if col != nil {
		switch col.DatabaseTypeName() {
		case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
			out := make([]byte, len(b))
			copy(out, b)
			return out
		}
	}
	return string(b)
}
