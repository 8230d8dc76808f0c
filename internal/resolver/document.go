package resolver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/texsubmit/internal/fsutil"
)

// DefaultDocumentGlob selects LaTeX sources.
const DefaultDocumentGlob = "*.tex"

const maxLineSize = 4 << 20

// Document is a source file in the working tree, held as lines.
type Document struct {
	Path  string
	Lines []string
}

// Dir is the directory staged resources are copied into.
func (d Document) Dir() string { return filepath.Dir(d.Path) }

// ReadDocument loads a document line by line.
func ReadDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrDocumentRead, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	doc := Document{Path: path}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		doc.Lines = append(doc.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrDocumentRead, path, err)
	}
	return doc, nil
}

// LoadDocuments reads every file below root whose name matches glob.
// Unreadable documents are reported in the returned error slice and skipped.
func LoadDocuments(ctx context.Context, root, glob string) ([]Document, []error, error) {
	paths, err := fsutil.Collect(fsutil.Find(ctx, root, glob))
	if err != nil {
		return nil, nil, fmt.Errorf("discover documents in %s: %w", root, err)
	}

	docs := make([]Document, 0, len(paths))
	var readErrs []error
	for _, p := range paths {
		doc, err := ReadDocument(p)
		if err != nil {
			readErrs = append(readErrs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, readErrs, nil
}
