package docmark

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	docxml "github.com/benjaminschreck/go-docmark/pkg/docmark/xml"
)

// PackageRelationshipsPart is the relationships part of the package itself.
const PackageRelationshipsPart = "_rels/.rels"

// Relationship represents a relationship in the package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Relationship []Relationship `xml:"Relationship"`
}

// Package gives part-level access to an Office Open XML package. Parts
// written with WritePart replace the original content when the package is
// serialised; everything else is copied through untouched.
type Package struct {
	files   []*zip.File
	parts   map[string]*zip.File
	written map[string][]byte
}

// OpenPackage reads the zip directory of a package.
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	p := &Package{
		files:   zipReader.File,
		parts:   make(map[string]*zip.File, len(zipReader.File)),
		written: make(map[string][]byte),
	}
	for _, file := range zipReader.File {
		p.parts[file.Name] = file
	}
	return p, nil
}

// Parts returns the part names in archive order.
func (p *Package) Parts() []string {
	names := make([]string, len(p.files))
	for i, f := range p.files {
		names[i] = f.Name
	}
	return names
}

// HasPart reports whether the package contains name.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// ReadRaw returns the bytes of a part, including pending writes.
func (p *Package) ReadRaw(name string) ([]byte, error) {
	if content, ok := p.written[name]; ok {
		return content, nil
	}

	file, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

// ReadPart parses a part as XML.
func (p *Package) ReadPart(name string) (*docxml.Document, error) {
	content, err := p.ReadRaw(name)
	if err != nil {
		return nil, err
	}
	doc, err := docxml.ParseBytes(content)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", name, err)
	}
	return doc, nil
}

// WritePart replaces the content of an existing part.
func (p *Package) WritePart(name string, doc *docxml.Document) error {
	if !p.HasPart(name) {
		return fmt.Errorf("part %s not found", name)
	}
	content, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialise part %s: %w", name, err)
	}
	p.written[name] = content
	return nil
}

// RelationshipsPartName returns the relationships part belonging to part,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels". The empty
// part name stands for the package itself.
func RelationshipsPartName(part string) string {
	if part == "" {
		return PackageRelationshipsPart
	}
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// Relationships parses a relationships part. A missing part yields no
// relationships.
func (p *Package) Relationships(relsPart string) ([]Relationship, error) {
	if !p.HasPart(relsPart) {
		return []Relationship{}, nil
	}

	content, err := p.ReadRaw(relsPart)
	if err != nil {
		return nil, err
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships %s: %w", relsPart, err)
	}
	return rels.Relationship, nil
}

// ResolveRelationshipTarget finds the first relationship of relType in
// relsPart and returns its target as a part name. Targets are relative to
// the directory holding the source part unless they start with "/".
func (p *Package) ResolveRelationshipTarget(relsPart, relType string) (string, bool, error) {
	rels, err := p.Relationships(relsPart)
	if err != nil {
		return "", false, err
	}

	for _, rel := range rels {
		if rel.Type != relType || strings.EqualFold(rel.TargetMode, "External") {
			continue
		}
		if strings.HasPrefix(rel.Target, "/") {
			return strings.TrimPrefix(path.Clean(rel.Target), "/"), true, nil
		}
		// "word/_rels/document.xml.rels" describes parts relative to "word".
		sourceDir := path.Dir(path.Dir(relsPart))
		if sourceDir == "." {
			sourceDir = ""
		}
		return path.Join(sourceDir, rel.Target), true, nil
	}
	return "", false, nil
}

// WriteTo writes the package as a zip archive.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, file := range p.files {
		content, replaced := p.written[file.Name]
		if !replaced {
			if err := zw.Copy(file); err != nil {
				return cw.n, fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   file.Method,
			Modified: file.Modified,
		})
		if err != nil {
			return cw.n, fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(content)); err != nil {
			return cw.n, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
