package declsql

import (
	"database/sql"

	"github.com/declsql/declsql/scanner"
)

func shapeRows(rows *sql.Rows, shape ResultShape) (any, error) {
	defer rows.Close()
	switch shape {
	case RowsFlat:
		return flatRows(rows)
	case RowAsSlice:
		return oneRowSlice(rows)
	case RowAsMap:
		return oneRowMap(rows)
	case RowsAsMaps:
		return allRowMaps(rows)
	}
	return nil, sql.ErrNoRows
}

func sliceDest(columns []*sql.ColumnType) ([]any, []*scanner.SliceScanner) {
	dest := make([]any, len(columns))
	scanners := make([]*scanner.SliceScanner, len(columns))
	for i, c := range columns {
		scanners[i] = &scanner.SliceScanner{Column: c, Index: i}
		dest[i] = scanners[i]
	}
	return dest, scanners
}

func mapDest(columns []*sql.ColumnType) ([]any, []*scanner.MapScanner) {
	dest := make([]any, len(columns))
	scanners := make([]*scanner.MapScanner, len(columns))
	for i, c := range columns {
		scanners[i] = &scanner.MapScanner{Column: c, Name: c.Name()}
		dest[i] = scanners[i]
	}
	return dest, scanners
}

func flatRows(rows *sql.Rows) ([]any, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dest, scanners := sliceDest(columns)
	flat := []any{}
	for rows.Next() {
		row := make([]any, len(columns))
		for _, s := range scanners {
			s.Dest = row
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		flat = append(flat, row...)
	}
	return flat, rows.Err()
}

func oneRowSlice(rows *sql.Rows) ([]any, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dest, scanners := sliceDest(columns)
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	row := make([]any, len(columns))
	for _, s := range scanners {
		s.Dest = row
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return row, nil
}

func oneRowMap(rows *sql.Rows) (map[string]any, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dest, scanners := mapDest(columns)
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	row := make(map[string]any, len(columns))
	for _, s := range scanners {
		s.Dest = row
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return row, nil
}

func allRowMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dest, scanners := mapDest(columns)
	ret := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any, len(columns))
		for _, s := range scanners {
			s.Dest = row
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, row)
	}
	return ret, rows.Err()
}
