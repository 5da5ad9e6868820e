package docmark

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	wNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/comments.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"/></Types>`

	packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments" Target="comments.xml"/></Relationships>`
)

var xmlText = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// part is a file in a fixture package; order matters for zip output.
type part struct {
	name    string
	content string
}

func buildZip(t *testing.T, parts ...part) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.Create(p.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document ` + wNS + `><w:body>` + body + `</w:body></w:document>`
}

// commentsXML builds a comments part. A comment's text may be split into
// several runs with "|".
func commentsXML(comments map[string]string) string {
	ids := make([]string, 0, len(comments))
	for id := range comments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:comments ` + wNS + `>`)
	for _, id := range ids {
		fmt.Fprintf(&b, `<w:comment w:id="%s" w:author="Author" w:initials="A"><w:p>`, id)
		for _, piece := range strings.Split(comments[id], "|") {
			fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, xmlText.Replace(piece))
		}
		b.WriteString(`</w:p></w:comment>`)
	}
	b.WriteString(`</w:comments>`)
	return b.String()
}

// newDocx builds a minimal template package with a comments part.
func newDocx(t *testing.T, body string, comments map[string]string) []byte {
	t.Helper()
	return buildZip(t,
		part{"[Content_Types].xml", contentTypesXML},
		part{"_rels/.rels", packageRelsXML},
		part{"word/document.xml", documentXML(body)},
		part{"word/_rels/document.xml.rels", documentRelsXML},
		part{"word/comments.xml", commentsXML(comments)},
	)
}

func prepareBytes(t *testing.T, data []byte, opts ...Option) (*Template, error) {
	t.Helper()
	return Prepare(bytes.NewReader(data), int64(len(data)), opts...)
}

// readOutputPart returns a part of a rendered package.
func readOutputPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	pkg, err := OpenPackage(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	content, err := pkg.ReadRaw(name)
	require.NoError(t, err)
	return string(content)
}

func commented(id, text string) string {
	return fmt.Sprintf(`<w:commentRangeStart w:id="%s"/><w:r><w:t>%s</w:t></w:r><w:commentRangeEnd w:id="%s"/>`+
		`<w:r><w:rPr><w:rStyle w:val="CommentReference"/></w:rPr><w:commentReference w:id="%s"/></w:r>`, id, text, id, id)
}
