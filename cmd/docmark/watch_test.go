package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

func TestWatch_RerendersOnDataChange(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)
	data := writeFile(t, dir, "invoice.yaml", "title: First\nitems: []\n")
	out := filepath.Join(dir, "out.docx")

	cfg := watchConfig{templatePath: tpl, dataPath: data, outPath: out, debounce: 20 * time.Millisecond}
	var renders atomic.Int32
	render := func() error {
		renders.Add(1)
		return renderFile(io.Discard, tpl, data, out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, cfg, docmark.NewLogger(io.Discard, docmark.LogOff), render)
	}()

	require.Eventually(t, func() bool { return containsDocument(out, "First") }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, dir, "invoice.yaml", "title: Second\nitems: []\n")
	require.Eventually(t, func() bool { return containsDocument(out, "Second") }, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, renders.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	tpl := writeTemplate(t, dir, "invoice.docx", invoiceBody, invoiceComments)

	cfg := watchConfig{templatePath: tpl, outPath: filepath.Join(dir, "out.docx"), debounce: 10 * time.Millisecond}
	var renders atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watch(ctx, cfg, docmark.NewLogger(io.Discard, docmark.LogOff), func() error {
		renders.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return renders.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	writeFile(t, dir, "notes.txt", "unrelated")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), renders.Load())
}

func TestWatch_MissingDirectory(t *testing.T) {
	cfg := watchConfig{templatePath: filepath.Join(t.TempDir(), "nope", "t.docx"), outPath: "out.docx"}
	err := watch(context.Background(), cfg, docmark.NewLogger(io.Discard, docmark.LogOff), func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

// containsDocument reports whether the rendered package at path holds text.
// A read racing a write in progress counts as not yet.
func containsDocument(path, text string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pkg, err := docmark.OpenPackage(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	content, err := pkg.ReadRaw("word/document.xml")
	if err != nil {
		return false
	}
	return strings.Contains(string(content), text)
}
