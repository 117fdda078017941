package scanner

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		src  any
		want any
	}{
		{"nil", nil, nil},
		{"bytes", []byte("abc"), "abc"},
		{"raw bytes", sql.RawBytes("abc"), "abc"},
		{"int64", int64(7), int64(7)},
		{"string", "x", "x"},
		{"time", now, now},
		{"null string valid", sql.NullString{String: "x", Valid: true}, "x"},
		{"null string invalid", sql.NullString{}, nil},
		{"null int64 valid", sql.NullInt64{Int64: 7, Valid: true}, int64(7)},
		{"null time invalid", sql.NullTime{}, nil},
		{"null bool valid", sql.NullBool{Bool: true, Valid: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(nil, tt.src))
		})
	}
}

func TestMapScanner(t *testing.T) {
	m := make(map[string]any)
	s := &MapScanner{Dest: m, Name: "name"}
	require.NoError(t, s.Scan([]byte("x")))
	require.Equal(t, map[string]any{"name": "x"}, m)
}

func TestSliceScanner(t *testing.T) {
	row := make([]any, 2)
	s := &SliceScanner{Dest: row, Index: 1}
	require.NoError(t, s.Scan(int64(5)))
	require.Equal(t, []any{nil, int64(5)}, row)
}
