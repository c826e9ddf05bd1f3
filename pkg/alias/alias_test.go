package alias

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadTableParsesRows(t *testing.T) {
	path := writeTemp(t, "aliases.csv", "id,name\n3120001,N9FNE\n3120002,W1AW\n")

	tbl, err := LoadTable(path, nil)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	name, ok := tbl.Lookup(3120001)
	if !ok || name != "N9FNE" {
		t.Fatalf("Lookup(3120001) = %q, %v", name, ok)
	}
	if _, ok := tbl.Lookup(9999999); ok {
		t.Fatalf("expected unknown RID to miss")
	}
}

func TestLoadTableSkipsMalformedRows(t *testing.T) {
	path := writeTemp(t, "aliases.csv", "id,name\nnotanumber,Bad\n3120001,Good\n")

	tbl, err := LoadTable(path, nil)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	if _, ok := tbl.Lookup(3120001); !ok {
		t.Fatalf("expected valid row to survive a malformed sibling")
	}
}

func TestLoadRIDList(t *testing.T) {
	path := writeTemp(t, "blacklist.csv", "id\n3120001\n3120002\n")

	ids, err := LoadRIDList(path, nil)
	if err != nil {
		t.Fatalf("LoadRIDList: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3120001 || ids[1] != 3120002 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.csv"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
