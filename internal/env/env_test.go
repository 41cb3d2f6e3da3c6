package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergeLaterSetsWin(t *testing.T) {
	merged := Merge(
		Vars{"A": "1", "B": "1"},
		Vars{"B": "2"},
		Vars{"C": "3"},
	)
	if merged["A"] != "1" || merged["B"] != "2" || merged["C"] != "3" {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}

func TestLoadEnvFilesMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.env"), []byte("KEY=a\nONLY_A=1\n"), 0o644); err != nil {
		t.Fatalf("write a.env: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.env"), []byte("KEY=b\n"), 0o644); err != nil {
		t.Fatalf("write b.env: %v", err)
	}

	vars, err := LoadEnvFiles(dir, []string{"a.env", "b.env"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if vars["KEY"] != "b" {
		t.Fatalf("KEY=%q, want b", vars["KEY"])
	}
	if vars["ONLY_A"] != "1" {
		t.Fatalf("ONLY_A=%q, want 1", vars["ONLY_A"])
	}
}

func TestParseInlineVars(t *testing.T) {
	vars, err := ParseInlineVars("A=1, B=two")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if vars["A"] != "1" || vars["B"] != "two" {
		t.Fatalf("unexpected vars: %v", vars)
	}

	if _, err := ParseInlineVars("broken"); err == nil {
		t.Fatalf("expected error for value without =")
	}
	if _, err := ParseInlineVars("=1"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
