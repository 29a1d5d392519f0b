// Package docx implements placeholder detection and in-place filling for
// OOXML (.docx) documents.
//
// A .docx file is a ZIP archive of XML parts. The Package type holds one
// archive fully in memory: documents round-trip between client and server as
// byte buffers, so there is no file handle to keep open. Only the text of the
// body/header/footer parts is ever rewritten; every other entry is copied
// back verbatim on serialization so images, styles and relationships survive
// untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// textPartPattern matches the parts whose text content may be rewritten:
// the main document body plus numbered headers and footers.
var textPartPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// Sentinel errors for package operations.
var (
	ErrNotZip       = errors.New("content is not a readable docx archive")
	ErrPartNotFound = errors.New("part not found in docx")
)

// Package provides in-memory access to the entries of a .docx archive.
type Package struct {
	entries map[string][]byte
	order   []string // original archive entry order, preserved on serialize
}

// OpenPackage reads a .docx archive from a byte buffer.
func OpenPackage(content []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotZip, err)
	}

	pkg := &Package{
		entries: make(map[string][]byte, len(zr.File)),
		order:   make([]string, 0, len(zr.File)),
	}

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}

		data, err := io.ReadAll(rc)
		_ = rc.Close()

		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		if _, dup := pkg.entries[f.Name]; !dup {
			pkg.order = append(pkg.order, f.Name)
		}
		pkg.entries[f.Name] = data
	}

	return pkg, nil
}

// TextParts returns the names of the rewritable text parts present in the
// archive (word/document.xml, word/headerN.xml, word/footerN.xml), in the
// archive's entry order.
func (p *Package) TextParts() []string {
	var names []string

	for _, name := range p.order {
		if textPartPattern.MatchString(name) {
			names = append(names, name)
		}
	}

	return names
}

// PartText returns the text content of a named part.
func (p *Package) PartText(name string) (string, error) {
	data, ok := p.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrPartNotFound, name)
	}

	return string(data), nil
}

// SetPartText replaces the text content of an existing part. Parts are never
// added or removed, only rewritten.
func (p *Package) SetPartText(name, text string) error {
	if _, ok := p.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrPartNotFound, name)
	}

	p.entries[name] = []byte(text)

	return nil
}

// Serialize writes the archive back to a byte buffer. Entries keep their
// original order; untouched entries are copied byte-for-byte.
func (p *Package) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}

		if _, err := w.Write(p.entries[name]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip writer: %w", err)
	}

	return buf.Bytes(), nil
}
