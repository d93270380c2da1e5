package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Loader reads a tabular file into raw records, header row first.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) ([][]string, error)
}

// Options tunes how a table is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; takes precedence over SheetIndex.
	SheetName string
	// SheetIndex is the 1-based XLSX sheet index; 0 means the first sheet.
	SheetIndex int
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

var (
	// ErrUnsupported indicates no loader handles the file extension.
	ErrUnsupported = errors.New("unsupported table format")
	// ErrNoHeader indicates the file has no header row.
	ErrNoHeader = errors.New("table has no header row")
)

// Supported reports whether a registered loader handles filename.
func Supported(filename string) bool {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return true
		}
	}
	return false
}

// ReadRecords loads path with the first matching loader and tidies the result:
// header names are trimmed and made unique, short rows are padded.
func ReadRecords(path string, opt Options) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		recs, err := l.Load(path, opt)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoHeader)
		}
		return tidy(recs), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
}

// LoadFile reads path into a dataframe where every column is a string series.
// Numeric coercion is left to the caller so locale-specific separators survive.
func LoadFile(path string, opt Options) (dataframe.DataFrame, error) {
	recs, err := ReadRecords(path, opt)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := dataframe.LoadRecords(recs,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return df, fmt.Errorf("load %s: %w", filepath.Base(path), df.Err)
	}
	return df, nil
}

func tidy(recs [][]string) [][]string {
	header := recs[0]
	width := len(header)
	for _, r := range recs[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	seen := make(map[string]int, width)
	names := make([]string, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
		}
		if name == "" {
			name = "col_" + strconv.Itoa(i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = base + "_" + strconv.Itoa(seen[base])
		}
		seen[name]++
		names[i] = name
	}
	out := make([][]string, 0, len(recs))
	out = append(out, names)
	for _, r := range recs[1:] {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			r = padded
		}
		out = append(out, r)
	}
	return out
}
