package docmark

import (
	"strings"

	docxml "github.com/benjaminschreck/go-docmark/pkg/docmark/xml"
)

var quoteNormalizer = strings.NewReplacer(
	"\u201c", `"`,
	"\u201d", `"`,
	"\u201e", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u201a", "'",
)

// NormalizeQuotes replaces typographic quotes with their ASCII forms.
func NormalizeQuotes(s string) string {
	return quoteNormalizer.Replace(s)
}

// collectComments maps each w:comment id to the concatenated text of its
// w:t elements.
func collectComments(doc *docxml.Document, normalize bool) map[string]string {
	comments := make(map[string]string)
	root := doc.Root()
	if root == nil {
		return comments
	}

	for _, c := range root.FindAll(docxml.NamespaceWordprocessingML, "comment") {
		id, ok := c.Attr(docxml.NamespaceWordprocessingML, "id")
		if !ok {
			continue
		}
		var text strings.Builder
		for _, t := range c.FindAll(docxml.NamespaceWordprocessingML, "t") {
			text.WriteString(t.Text())
		}
		value := text.String()
		if normalize {
			value = NormalizeQuotes(value)
		}
		comments[id] = value
	}
	return comments
}

// stripComments removes every w:comment element from the comments part.
func stripComments(doc *docxml.Document) int {
	root := doc.Node()
	removed := 0
	for _, c := range root.FindAll(docxml.NamespaceWordprocessingML, "comment") {
		if parent, ok := docxml.Parent(root, c); ok && parent.RemoveChild(c) {
			removed++
		}
	}
	return removed
}
