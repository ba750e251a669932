package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_Load_PlainText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello, document"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Source != path {
		t.Errorf("source: got %q, want %q", doc.Source, path)
	}
	if doc.Text != "hello, document" {
		t.Errorf("text: got %q", doc.Text)
	}
}

func Test_Load_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "no-such-file.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func Test_Load_Directory(t *testing.T) {
	t.Parallel()
	_, err := Load(t.TempDir())
	if err == nil {
		t.Error("want error when loading a directory")
	}
}

func Test_Load_InvalidEncoding(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("want ErrInvalidEncoding, got %v", err)
	}
}

func Test_Load_EmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("want empty text, got %q", doc.Text)
	}
}
