package docmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docxml "github.com/benjaminschreck/go-docmark/pkg/docmark/xml"
)

func TestCollectComments(t *testing.T) {
	doc, err := docxml.ParseBytes([]byte(`<w:comments ` + wNS + `>` +
		`<w:comment w:id="1"><w:p><w:r><w:t>items</w:t></w:r><w:r><w:t>[]</w:t></w:r></w:p></w:comment>` +
		`<w:comment w:id="2"><w:p><w:r><w:t>‘quoted’</w:t></w:r></w:p><w:p><w:r><w:t>x</w:t></w:r></w:p></w:comment>` +
		`<w:comment><w:p><w:r><w:t>no id</w:t></w:r></w:p></w:comment>` +
		`<w:comment w:id="3"/>` +
		`</w:comments>`))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"1": "items[]",
		"2": "'quoted'x",
		"3": "",
	}, collectComments(doc, true))

	assert.Equal(t, "‘quoted’x", collectComments(doc, false)["2"])

	assert.Equal(t, 4, stripComments(doc))
	assert.Empty(t, doc.Root().Children)
	assert.Empty(t, collectComments(doc, true))
}

func TestNormalizeQuotes(t *testing.T) {
	assert.Equal(t, `"a" 'b' "c" 'd'`, NormalizeQuotes("“a” ‘b’ „c“ ‚d’"))
	assert.Equal(t, "plain", NormalizeQuotes("plain"))
}
