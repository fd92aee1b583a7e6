// Package export serializes metric tables and analysis results to JSON or
// CSV, optionally zstd-compressed based on the output filename.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-smite-metrics/internal/table"
)

// ErrUnsupportedFormat reports a format name outside json/csv.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format selects the serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (want json or csv)", ErrUnsupportedFormat, s)
	}
}

// Create opens the output file, wrapping it in a zstd writer when the path
// carries a .zst suffix. The caller must Close the result.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &zstdFile{zw: zw, f: f}, nil
}

type zstdFile struct {
	zw *zstd.Encoder
	f  *os.File
}

func (z *zstdFile) Write(p []byte) (int, error) { return z.zw.Write(p) }

func (z *zstdFile) Close() error {
	if err := z.zw.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

// WriteJSON writes any value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteCSV writes one table as CSV, header first, cells rendered in column
// order. Missing cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Cols); err != nil {
		return err
	}
	record := make([]string, len(t.Cols))
	for _, r := range t.Rows {
		for i, c := range t.Cols {
			record[i] = csvCell(r[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// WriteTable writes one table in the given format.
func WriteTable(w io.Writer, f Format, t *table.Table) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}
