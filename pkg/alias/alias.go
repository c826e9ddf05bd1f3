// Package alias loads the local CSV reference tables spec.md §6
// names: RID alias names, and whitelist/blacklist RID lists, each a
// simple "id,name" (or "id" alone for RID lists) CSV file referenced
// from the Aliases config section.
package alias

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/k9fne/fned/pkg/logger"
)

// Table maps RID -> display name, loaded from an "id,name" CSV file.
type Table struct {
	names map[uint32]string
}

// LoadTable reads an alias CSV from path. Malformed rows are skipped
// and logged rather than aborting the whole load, matching the
// tolerant-per-row parsing used elsewhere in this codebase for
// externally-sourced reference data.
func LoadTable(path string, log *logger.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alias: open %s: %w", path, err)
	}
	defer f.Close()

	names := make(map[uint32]string)
	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1

	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			if log != nil {
				log.Warn("alias: skipping malformed row", logger.Int("line", lineNum), logger.Error(err))
			}
			continue
		}
		if len(record) < 2 {
			continue
		}
		id, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil {
			continue
		}
		names[uint32(id)] = record[1]
	}

	return &Table{names: names}, nil
}

// Lookup returns the display name for an RID, or ok=false if unknown.
func (t *Table) Lookup(rid uint32) (string, bool) {
	name, ok := t.names[rid]
	return name, ok
}

// Len reports how many entries the table holds.
func (t *Table) Len() int {
	return len(t.names)
}

// LoadRIDList reads a whitelist/blacklist RID CSV file (just an "id"
// column, optionally followed by ignored extra columns).
func LoadRIDList(path string, log *logger.Logger) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alias: open %s: %w", path, err)
	}
	defer f.Close()

	var ids []uint32
	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1

	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			if log != nil {
				log.Warn("alias: skipping malformed row", logger.Int("line", lineNum), logger.Error(err))
			}
			continue
		}
		if len(record) < 1 {
			continue
		}
		id, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint32(id))
	}

	return ids, nil
}
