package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := cat.Render("error.wrong_player", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "You can't move a piece at that square" {
		t.Fatalf("wrong_player = %q", got)
	}

	got, err = cat.Render("error.illegal_move", map[string]string{"From": "e2", "To": "e6"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "e2e6 is not a valid move." {
		t.Fatalf("illegal_move = %q", got)
	}
}

func TestRenderMissingKey(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cat.Render("error.no_such_key", nil); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestRenderMissingTemplateData(t *testing.T) {
	cat, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cat.Render("error.illegal_move", map[string]string{"From": "e2"}); err == nil {
		t.Fatal("expected error for missing template data")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := []byte("error:\n  not_found: \"No such duel\"\n")
	if err := os.WriteFile(filepath.Join(dir, "10-custom.yaml"), override, 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	cat, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := cat.Render("error.not_found", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "No such duel" {
		t.Fatalf("override not applied: %q", got)
	}
	// Keys not mentioned by the override keep their defaults.
	got, err = cat.Render("error.already_full", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "This game already has two players" {
		t.Fatalf("default lost: %q", got)
	}
}
