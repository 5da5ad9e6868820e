package xml

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// WriteTo serialises the document. Prefixes and namespace declarations are
// written exactly as they were decoded.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for i, c := range d.Children {
		writeNode(cw, c)
		// Keep the declaration on its own line like Word does.
		if _, ok := c.(*ProcInst); ok && i == 0 {
			cw.WriteString("\n")
		}
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// Bytes serialises the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String serialises a subtree. It is meant for tests and debug logging.
func (e *Element) String() string {
	var buf bytes.Buffer
	cw := &countingWriter{w: bufio.NewWriter(&buf)}
	writeNode(cw, e)
	cw.w.Flush()
	return buf.String()
}

func writeNode(w *countingWriter, n Node) {
	switch n := n.(type) {
	case *Element:
		if n.Name.Local == "" {
			for _, c := range n.Children {
				writeNode(w, c)
			}
			return
		}
		w.WriteString("<")
		w.WriteString(n.Name.String())
		for _, a := range n.Attrs {
			w.WriteString(" ")
			w.WriteString(a.Name.String())
			w.WriteString(`="`)
			w.WriteString(attrEscaper.Replace(a.Value))
			w.WriteString(`"`)
		}
		if len(n.Children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for _, c := range n.Children {
			writeNode(w, c)
		}
		w.WriteString("</")
		w.WriteString(n.Name.String())
		w.WriteString(">")
	case *Text:
		w.WriteString(textEscaper.Replace(n.Value))
	case *Comment:
		w.WriteString("<!--")
		w.WriteString(n.Value)
		w.WriteString("-->")
	case *ProcInst:
		w.WriteString("<?")
		w.WriteString(n.Target)
		if n.Inst != "" {
			w.WriteString(" ")
			w.WriteString(n.Inst)
		}
		w.WriteString("?>")
	case *RawDirective:
		w.WriteString("<!")
		w.WriteString(n.Value)
		w.WriteString(">")
	}
}

// countingWriter remembers the first error so writeNode can stay linear.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
