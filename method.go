package declsql

import (
	"strings"

	"go.uber.org/zap"
)

// Method declares one accessor: a SQL template with positional
// placeholders, the argument names bound to them in order, and the shape
// the raw result is reshaped into. Methods are immutable after New.
type Method struct {
	SQL   string
	Args  []string
	Shape ResultShape
}

// ResultShape declares how query results come back to the caller.
type ResultShape int

const (
	shapeInvalid ResultShape = iota

	// RowsFlat drains all rows and flattens every column value into one
	// ordered []any.
	RowsFlat

	// RowAsSlice fetches exactly one row as an ordered []any.
	RowAsSlice

	// RowAsMap fetches exactly one row as a map[string]any keyed by
	// column name.
	RowAsMap

	// RowsAsMaps drains all rows into a []map[string]any.
	RowsAsMaps

	// ExecResult runs a non-query statement and returns the affected row
	// count as an int64.
	ExecResult

	// LastInsertID runs an insert and returns the driver-reported
	// auto-generated id as an int64. Only legal on dialects with
	// SupportsLastInsertID.
	LastInsertID
)

func (s ResultShape) String() string {
	switch s {
	case RowsFlat:
		return "RowsFlat"
	case RowAsSlice:
		return "RowAsSlice"
	case RowAsMap:
		return "RowAsMap"
	case RowsAsMaps:
		return "RowsAsMaps"
	case ExecResult:
		return "ExecResult"
	case LastInsertID:
		return "LastInsertID"
	}
	return "invalid"
}

func (s ResultShape) valid() bool {
	return s > shapeInvalid && s <= LastInsertID
}

func (s ResultShape) isQuery() bool {
	return s >= RowsFlat && s <= RowsAsMaps
}

// Names of the connection's own operations. Method names may not shadow
// them.
var reservedNames = map[string]struct{}{
	"new":        {},
	"open":       {},
	"close":      {},
	"invoke":     {},
	"connect":    {},
	"disconnect": {},
	"is_error":   {},
	"last_error": {},
}

func validateMethod(name string, m Method, d Dialect, log *zap.Logger) error {
	if name == "" {
		return &ConfigError{msg: "empty method name"}
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		return &ConfigError{Method: name, msg: "name is reserved"}
	}
	if strings.TrimSpace(m.SQL) == "" {
		return &ConfigError{Method: name, msg: "empty sql"}
	}
	if !m.Shape.valid() {
		return &ConfigError{Method: name, msg: "unknown result shape"}
	}
	if m.Shape == LastInsertID && !d.SupportsLastInsertID {
		return &ConfigError{Method: name, msg: "dialect " + d.Name + " does not report last insert id"}
	}
	// A count mismatch is only warned: the execute call surfaces the real
	// binding error with driver context.
	if n := countPlaceholders(m.SQL, d.Marker); n != len(m.Args) {
		log.Warn("argument count does not match placeholders",
			zap.String("method", name),
			zap.Int("placeholders", n),
			zap.Int("args", len(m.Args)))
	}
	return nil
}

// countPlaceholders counts positional markers outside quoted literals.
// Dollar markers may repeat, so their count is the highest index seen.
func countPlaceholders(query string, marker Marker) int {
	var n, maxIdx int
	var quote rune
	var prev rune
	for i, r := range query {
		if quote != 0 {
			if r == quote && prev != '\\' {
				quote = 0
			}
			prev = r
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '?':
			if marker == MarkerQuestion {
				n++
			}
		case '$':
			if marker == MarkerDollar {
				idx := 0
				for j := i + 1; j < len(query) && query[j] >= '0' && query[j] <= '9'; j++ {
					idx = idx*10 + int(query[j]-'0')
				}
				if idx > maxIdx {
					maxIdx = idx
				}
			}
		}
		prev = r
	}
	if marker == MarkerDollar {
		return maxIdx
	}
	return n
}
