package docmark

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/directive"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/eval"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/render"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
	docxml "github.com/benjaminschreck/go-docmark/pkg/docmark/xml"
)

// Template is a .docx package whose comments have been parsed into
// directives. Rendering mutates the in-memory main document; Save, SaveAs
// or WriteTo produce the output package.
type Template struct {
	mu     sync.Mutex
	closed bool

	path    string
	file    *os.File
	cleanup runtime.Cleanup

	pkg          *Package
	documentPart string
	commentsPart string
	document     *docxml.Document
	comments     map[string]string
	resolver     *eval.Resolver

	config *Config
	logger *Logger
}

// Option configures Open and Prepare.
type Option func(*options)

type options struct {
	config    *Config
	logger    *Logger
	functions map[string]Function
	builtins  bool
}

// WithConfig replaces the global configuration for one template.
func WithConfig(c *Config) Option {
	return func(o *options) {
		if c != nil {
			o.config = c
		}
	}
}

// WithLogger replaces the global logger for one template.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFunction registers fn before the directives are evaluated. It
// overrides a built-in of the same name.
func WithFunction(name string, fn Function) Option {
	return func(o *options) {
		o.functions[name] = fn
	}
}

// WithoutBuiltins leaves the function registry empty apart from functions
// added with WithFunction.
func WithoutBuiltins() Option {
	return func(o *options) {
		o.builtins = false
	}
}

// Open prepares the template at path. The file stays open until Save,
// SaveAs or Close; Save writes the result back to path.
func Open(path string, opts ...Option) (*Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewPackageError("open", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, NewPackageError("open", path, err)
	}

	t, err := Prepare(file, info.Size(), opts...)
	if err != nil {
		file.Close()
		return nil, err
	}

	t.path = path
	t.file = file
	t.cleanup = runtime.AddCleanup(t, func(f *os.File) { f.Close() }, file)
	return t, nil
}

// Prepare reads a template from r. The reader must stay valid until the
// template is closed.
func Prepare(r io.ReaderAt, size int64, opts ...Option) (*Template, error) {
	o := &options{
		functions: make(map[string]Function),
		builtins:  true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.config == nil {
		o.config = GetGlobalConfig()
	}
	if o.logger == nil {
		o.logger = GetLogger()
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pkg, err := OpenPackage(r, size)
	if err != nil {
		return nil, NewPackageError("open", "", err)
	}

	documentPart, ok, err := pkg.ResolveRelationshipTarget(PackageRelationshipsPart, docxml.RelationshipOfficeDocument)
	if err != nil {
		return nil, NewPackageError("read", PackageRelationshipsPart, err)
	}
	if !ok || !pkg.HasPart(documentPart) {
		return nil, NewPackageError("open", PackageRelationshipsPart, ErrNoDocument)
	}

	commentsPart, ok, err := pkg.ResolveRelationshipTarget(RelationshipsPartName(documentPart), docxml.RelationshipComments)
	if err != nil {
		return nil, NewPackageError("read", RelationshipsPartName(documentPart), err)
	}
	if !ok || !pkg.HasPart(commentsPart) {
		return nil, NewPackageError("open", documentPart, ErrNoComments)
	}

	commentsDoc, err := pkg.ReadPart(commentsPart)
	if err != nil {
		return nil, NewPackageError("read", commentsPart, err)
	}
	comments := collectComments(commentsDoc, o.config.NormalizeQuotes)
	stripComments(commentsDoc)
	if err := pkg.WritePart(commentsPart, commentsDoc); err != nil {
		return nil, NewPackageError("write", commentsPart, err)
	}

	functions := make(map[string]Function)
	if o.builtins {
		for name, fn := range BuiltinFunctions() {
			functions[name] = fn
		}
	}
	for name, fn := range o.functions {
		functions[name] = fn
	}

	resolver, err := eval.NewResolver(comments, eval.WithLogger(o.logger), eval.WithFunctions(functions))
	if err != nil {
		return nil, err
	}

	document, err := pkg.ReadPart(documentPart)
	if err != nil {
		return nil, NewPackageError("read", documentPart, err)
	}

	o.logger.WithFields(Fields{"document": documentPart, "comments": commentsPart}).
		Debug("Prepared template with %d directives", len(comments))

	return &Template{
		pkg:          pkg,
		documentPart: documentPart,
		commentsPart: commentsPart,
		document:     document,
		comments:     comments,
		resolver:     resolver,
		config:       o.config,
		logger:       o.logger,
	}, nil
}

// RegisterFunction binds name for later renders, replacing any existing
// binding.
func (t *Template) RegisterFunction(name string, fn Function) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolver.RegisterFunction(name, fn)
}

// CommentIDs returns the ids of all comments in the template, sorted.
func (t *Template) CommentIDs() []string {
	ids := make([]string, 0, len(t.comments))
	for id := range t.comments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CommentText returns the text of comment id as it was parsed.
func (t *Template) CommentText(id string) string {
	return t.comments[id]
}

// Directive returns the parsed directive of comment id.
func (t *Template) Directive(id string) (directive.Directive, bool) {
	return t.resolver.Directive(id)
}

// Render evaluates every comment range of the main document against data.
// Rendering again after a successful render finds no comments and leaves
// the output unchanged.
func (t *Template) Render(data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTemplateClosed
	}

	logger := t.logger.WithRenderID().WithField("part", t.documentPart)
	engine := render.New(t.resolver,
		render.WithLogger(logger),
		render.WithMaxDepth(t.config.MaxRenderDepth),
	)
	root := scope.New(data, nil, scope.WithMissPolicy(t.config.MissPolicy()))

	logger.Debug("Rendering template")
	if err := engine.Render(root, t.document.Node()); err != nil {
		logger.Error("Render failed: %v", err)
		return err
	}

	if err := t.pkg.WritePart(t.documentPart, t.document); err != nil {
		return NewPackageError("write", t.documentPart, err)
	}
	logger.Debug("Rendered template")
	return nil
}

// WriteTo writes the output package to w. The template stays open.
func (t *Template) WriteTo(w io.Writer) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrTemplateClosed
	}
	n, err := t.pkg.WriteTo(w)
	if err != nil {
		return n, NewPackageError("write", "", err)
	}
	return n, nil
}

// Save writes the output package over the template file and closes the
// template.
func (t *Template) Save() error {
	if t.path == "" {
		return NewPackageError("save", "", fmt.Errorf("template was not opened from a file; use SaveAs or WriteTo"))
	}
	return t.SaveAs(t.path)
}

// SaveAs writes the output package to path and closes the template.
func (t *Template) SaveAs(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTemplateClosed
	}

	// Buffer first: path may be the file the package is still read from.
	var buf bytes.Buffer
	if _, err := t.pkg.WriteTo(&buf); err != nil {
		t.release()
		return NewPackageError("save", path, err)
	}
	if err := t.release(); err != nil {
		return NewPackageError("close", t.path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewPackageError("save", path, err)
	}

	t.logger.WithField("path", path).Debug("Saved rendered document")
	return nil
}

// Close releases the template without writing anything. Closing twice is
// a no-op.
func (t *Template) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	return t.release()
}

func (t *Template) release() error {
	t.closed = true
	if t.file == nil {
		return nil
	}
	t.cleanup.Stop()
	err := t.file.Close()
	t.file = nil
	return err
}
