// Package document loads source documents from the local filesystem.
// Plain text files are read as-is; PDF files are converted to plain text
// via the ledongthuc/pdf extractor. Loaded documents are immutable.
package document

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrNotFound reports that the requested document path does not exist.
var ErrNotFound = errors.New("document: file not found")

// ErrInvalidEncoding reports that the document content is not valid UTF-8.
// Chunk offsets are byte-based, so only valid UTF-8 input is accepted.
var ErrInvalidEncoding = errors.New("document: content is not valid UTF-8")

// Document is a loaded source text ready for chunking.
type Document struct {
	// Source is the file path the document was loaded from.
	Source string

	// Text is the full document content.
	Text string
}

// Load reads the document at path and returns its text content.
// Files with a .pdf extension are run through the PDF text extractor;
// everything else is treated as plain UTF-8 text.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("document: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document: %s is a directory, not a file", path)
	}

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDF(path)
	} else {
		text, err = readText(path)
	}
	if err != nil {
		return nil, err
	}

	return &Document{Source: path, Text: text}, nil
}

// readText reads a plain text file, rejecting content that is not UTF-8.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("document: read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}
	return string(data), nil
}

// extractPDF pulls the plain text stream out of a PDF file.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("document: open pdf %s: %w", path, err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("document: extract pdf text from %s: %w", path, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("document: read pdf text from %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}
	return string(data), nil
}
