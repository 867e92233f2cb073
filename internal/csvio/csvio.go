// Package csvio decodes CSV data into structs using `csv` field tags.
// Feeds and registries alike arrive as headered CSV with unpredictable
// column order and extra columns, so decoding is positional by header name.
package csvio

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strings"
)

type fieldMapping struct {
	csvIndex   int
	fieldIndex int
}

// Decode reads headered CSV from r and decodes every record into a slice of T.
// Columns without a matching `csv` tag are ignored; missing columns leave the
// field empty. Records with the wrong field count are skipped.
func Decode[T any](r io.Reader) ([]T, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Feeds occasionally carry ragged rows; tolerate them instead of failing.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Strip BOM from first field if present
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	fieldMap := buildFieldMap[T](header)

	var results []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		results = append(results, decodeRecord[T](record, fieldMap))
	}
	return results, nil
}

// DecodeZipFile decodes a single CSV entry from a zip archive.
func DecodeZipFile[T any](f *zip.File) ([]T, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return Decode[T](rc)
}

// buildFieldMap creates a mapping from CSV column positions to struct field positions.
func buildFieldMap[T any](header []string) []fieldMapping {
	var t T
	typ := reflect.TypeOf(t)

	tagToField := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("csv")
		if tag != "" {
			tagToField[tag] = i
		}
	}

	var mappings []fieldMapping
	for csvIdx, colName := range header {
		colName = strings.TrimSpace(colName)
		if fieldIdx, ok := tagToField[colName]; ok {
			mappings = append(mappings, fieldMapping{csvIndex: csvIdx, fieldIndex: fieldIdx})
		}
	}
	return mappings
}

// decodeRecord fills a struct T from a CSV record using the field mapping.
func decodeRecord[T any](record []string, fieldMap []fieldMapping) T {
	var t T
	v := reflect.ValueOf(&t).Elem()
	for _, fm := range fieldMap {
		if fm.csvIndex < len(record) {
			v.Field(fm.fieldIndex).SetString(record[fm.csvIndex])
		}
	}
	return t
}
