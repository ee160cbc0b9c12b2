// Package importer reads headwords from spreadsheets and feeds them to the
// vocabulary service's batch add.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/scry-lexicon/internal/service/vocabulary"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported import file format")

// headerCell is skipped wherever it appears as a cell value.
const headerCell = "headword"

// collector gathers trimmed headwords, dropping blanks, headers and
// case-insensitive repeats while keeping first-seen order.
type collector struct {
	seen  map[string]struct{}
	words []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(cell string) {
	word := strings.TrimSpace(cell)
	if word == "" {
		return
	}
	key := strings.ToLower(word)
	if key == headerCell {
		return
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.words = append(c.words, word)
}

// ReadWorkbook returns the headwords in the first column of every sheet of an
// xlsx workbook, in sheet then row order.
func ReadWorkbook(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	c := newCollector()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			if len(row) > 0 {
				c.add(row[0])
			}
		}
	}
	return c.words, nil
}

// ReadCSV returns the headwords in the first column of a CSV document.
func ReadCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	c := newCollector()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(row) > 0 {
			c.add(row[0])
		}
	}
	return c.words, nil
}

// ReadFile picks a reader by file extension.
func ReadFile(path string) ([]string, error) {
	var read func(io.Reader) ([]string, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		read = ReadWorkbook
	case ".csv":
		read = ReadCSV
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return read(file)
}

// BatchAdder is the part of the vocabulary service an import needs.
type BatchAdder interface {
	AddBatch(ctx context.Context, headwords []string) *vocabulary.BatchResult
}

// Run reads path and adds every headword in it through svc.
func Run(ctx context.Context, svc BatchAdder, path string, log *slog.Logger) (*vocabulary.BatchResult, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "importer"), slog.String("path", path))

	headwords, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "read headwords", slog.Int("count", len(headwords)))

	if len(headwords) == 0 {
		return &vocabulary.BatchResult{}, nil
	}

	result := svc.AddBatch(ctx, headwords)

	log.InfoContext(ctx, "import finished",
		slog.Int("created", result.Count(vocabulary.OutcomeCreated)),
		slog.Int("duplicate", result.Count(vocabulary.OutcomeDuplicate)),
		slog.Int("failed", result.Count(vocabulary.OutcomeFailed)))
	return result, nil
}
