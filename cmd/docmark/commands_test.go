package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

const invoiceYAML = `
title: Invoice 42
items:
  zeta:
    product: bolt
    qty: 3
  alpha:
    product: nut
    qty: 12
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderFile_MappingRepeatsInFileOrder(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)
	data := writeFile(t, dir, "invoice.yaml", invoiceYAML)
	out := filepath.Join(dir, "out.docx")

	require.NoError(t, renderFile(nil, tpl, data, out))

	document := readDocumentFile(t, out)
	assert.Contains(t, document, "Invoice 42")
	assert.Equal(t, 2, strings.Count(document, "<w:tr>"))
	assert.Less(t, strings.Index(document, "BOLT"), strings.Index(document, "NUT"))
	assert.Contains(t, document, "<w:t>12</w:t>")
	assert.NotContains(t, document, "commentRange")

	// The template itself is left alone.
	assert.Contains(t, readDocumentFile(t, tpl), "commentRangeStart")
}

func TestRenderFile_Stdout(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)
	data := writeFile(t, dir, "invoice.json", `{"title": "From JSON", "items": []}`)

	var stdout bytes.Buffer
	require.NoError(t, renderFile(&stdout, tpl, data, "-"))

	document := readDocument(t, stdout.Bytes())
	assert.Contains(t, document, "From JSON")
	assert.NotContains(t, document, "<w:tr>")
}

func TestRenderFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)
	out := filepath.Join(dir, "out.docx")

	err := renderFile(nil, tpl, filepath.Join(dir, "missing.yaml"), out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read data file")

	err = renderFile(nil, filepath.Join(dir, "missing.docx"), "", out)
	require.Error(t, err)
	assert.True(t, docmark.IsPackageError(err))

	broken := writeTemplate(t, dir, "broken.docx",
		`<w:p><w:commentRangeStart w:id="0"/></w:p>`,
		`<w:comment w:id="0"><w:p><w:r><w:t>title</w:t></w:r></w:p></w:comment>`)
	err = renderFile(nil, broken, "", out)
	require.Error(t, err)
	assert.True(t, docmark.IsMalformedDocumentError(err))
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)
	data := writeFile(t, dir, "invoice.yaml", invoiceYAML)
	out := filepath.Join(dir, "out.docx")

	_, err := execute(t, "render", tpl, "--data", data, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, readDocumentFile(t, out), "Invoice 42")
}

func TestRenderCommand_Flags(t *testing.T) {
	flag := renderCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
	assert.NotNil(t, watchCmd.Flags().Lookup("debounce"))
}

func TestInspectTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)

	var out bytes.Buffer
	require.NoError(t, inspectTemplate(&out, tpl))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Regexp(t, `^ID\s+KIND\s+DIRECTIVE\s+TEXT$`, lines[0])
	assert.Regexp(t, `^0\s+key\s+title\s+"title"$`, lines[1])
	assert.Regexp(t, `^1\s+foreach\s+items\[\]\s+"items\[\]"$`, lines[2])
	assert.Regexp(t, `^2\s+call\s+`, lines[3])
	assert.Contains(t, lines[3], `"uppercase(product)"`)
}

func TestInspectTemplate_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "bad.docx", `<w:p>`+commented("5", "x")+`</w:p>`,
		`<w:comment w:id="5"><w:p><w:r><w:t>items[x]</w:t></w:r></w:p></w:comment>`)

	err := inspectTemplate(&bytes.Buffer{}, tpl)
	require.Error(t, err)
	assert.True(t, docmark.IsSyntaxError(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "docmark "+Version)
	assert.Contains(t, out, "Go Version:")
}

func TestInitConfig(t *testing.T) {
	defer docmark.SetGlobalConfig(docmark.DefaultConfig())

	dir := t.TempDir()
	cfg := writeFile(t, dir, "docmark.yaml", "lookup_policy: nil\nmax_render_depth: 7\n")

	cfgFile, verbose = cfg, true
	require.NoError(t, initConfig(nil, nil))
	got := docmark.GetGlobalConfig()
	assert.Equal(t, "debug", got.LogLevel)
	assert.Equal(t, docmark.LookupNil, got.LookupPolicy)
	assert.Equal(t, 7, got.MaxRenderDepth)

	cfgFile, verbose = writeFile(t, dir, "bad.yaml", "log_level: loud\n"), false
	err := initConfig(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	cfgFile = ""
}
