package render

import (
	"strings"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/eval"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/xml"
)

// DefaultMaxDepth bounds how deeply repetitions may nest.
const DefaultMaxDepth = 100

// Resolver turns a comment id into a value under a scope.
type Resolver interface {
	Resolve(id string, s *scope.Scope) (eval.Value, error)
}

// Logger is the subset of a leveled logger the engine writes to.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Engine renders comment ranges using a Resolver.
type Engine struct {
	resolver Resolver
	logger   Logger
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxDepth limits the nesting of repetitions. Values below 1 keep the
// default.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// New creates an engine resolving directives with r.
func New(r Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: r,
		logger:   nopLogger{},
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	nameRangeStart = xml.W("commentRangeStart")
	nameRangeEnd   = xml.W("commentRangeEnd")
	nameReference  = xml.W("commentReference")
	nameRun        = xml.W("r")
	nameRunProps   = xml.W("rPr")
	nameText       = xml.W("t")
	nameID         = xml.W("id")
	nameSpace      = xml.Name{Prefix: "xml", Local: "space", Space: xml.NamespaceXML}
)

// Render applies every comment range found under root. root is typically
// the document node of the main part; it is mutated in place. Rendering an
// already rendered tree finds no markers and changes nothing.
func (e *Engine) Render(s *scope.Scope, root *xml.Element) error {
	return e.renderLevel(s, root, 0)
}

// level is the marker bookkeeping for one call of renderLevel.
type level struct {
	root   *xml.Element
	starts map[string]*xml.Element
	ends   map[string]*xml.Element
	order  []string
	done   map[string]bool
}

func (e *Engine) renderLevel(s *scope.Scope, root *xml.Element, depth int) error {
	if depth > e.maxDepth {
		return &MalformedDocumentError{Message: "repetitions nested too deeply"}
	}

	lv, err := collectMarkers(root)
	if err != nil {
		return err
	}
	removeCommentReferences(root)

	for _, id := range lv.order {
		if lv.done[id] {
			continue
		}
		lv.done[id] = true

		end, ok := lv.ends[id]
		if !ok {
			return &MalformedDocumentError{ID: id, Message: "comment range has no end"}
		}
		if err := checkRange(lv.root, id, lv.starts[id], end); err != nil {
			return err
		}
		value, err := e.resolver.Resolve(id, s)
		if err != nil {
			return err
		}

		if value.IsSequence() {
			e.logger.Debug("comment %s: repeating %d times at depth %d", id, len(value.Scopes), depth)
			err = e.expand(lv, id, lv.starts[id], end, value.Scopes, depth)
		} else {
			err = substitute(lv.root, id, lv.starts[id], end, FormatValue(value.Data))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func collectMarkers(root *xml.Element) (*level, error) {
	lv := &level{
		root:   root,
		starts: make(map[string]*xml.Element),
		ends:   make(map[string]*xml.Element),
		done:   make(map[string]bool),
	}

	for _, el := range root.FindAll(xml.NamespaceWordprocessingML, nameRangeStart.Local) {
		id, _ := el.Attr(xml.NamespaceWordprocessingML, nameID.Local)
		if _, dup := lv.starts[id]; dup {
			return nil, &MalformedDocumentError{ID: id, Message: "duplicate comment range start"}
		}
		lv.starts[id] = el
		lv.order = append(lv.order, id)
	}
	for _, el := range root.FindAll(xml.NamespaceWordprocessingML, nameRangeEnd.Local) {
		id, _ := el.Attr(xml.NamespaceWordprocessingML, nameID.Local)
		if _, dup := lv.ends[id]; dup {
			return nil, &MalformedDocumentError{ID: id, Message: "duplicate comment range end"}
		}
		if _, ok := lv.starts[id]; !ok {
			return nil, &MalformedDocumentError{ID: id, Message: "comment range end has no start"}
		}
		lv.ends[id] = el
	}
	return lv, nil
}

// removeCommentReferences drops every w:commentReference and the run that
// held it when only run properties are left.
func removeCommentReferences(root *xml.Element) {
	for _, ref := range root.FindAll(xml.NamespaceWordprocessingML, nameReference.Local) {
		chain, ok := xml.Ancestors(root, ref)
		if !ok {
			continue
		}
		parent := chain[len(chain)-1]
		parent.RemoveChild(ref)

		if len(chain) < 2 || !parent.Name.Is(nameRun.Space, nameRun.Local) || !onlyRunProperties(parent) {
			continue
		}
		chain[len(chain)-2].RemoveChild(parent)
	}
}

func onlyRunProperties(run *xml.Element) bool {
	for _, c := range run.Children {
		el, ok := c.(*xml.Element)
		if !ok || !el.Name.Is(nameRunProps.Space, nameRunProps.Local) {
			return false
		}
	}
	return true
}

// checkRange verifies that both markers are still in the tree and that
// end follows start in document order.
func checkRange(root *xml.Element, id string, start, end *xml.Element) error {
	var seen []xml.Node
	root.Walk(func(n xml.Node) bool {
		if n == start || n == end {
			seen = append(seen, n)
		}
		return len(seen) < 2
	})

	if len(seen) < 2 {
		return detached(id)
	}
	if seen[0] == end {
		return &MalformedDocumentError{ID: id, Message: "comment range ends before it starts"}
	}
	return nil
}

// substitute writes text into the first w:t between start and end, then
// removes both markers. Nothing is changed unless end is reached after
// start.
func substitute(root *xml.Element, id string, start, end *xml.Element, text string) error {
	startParent, ok := xml.Parent(root, start)
	if !ok {
		return detached(id)
	}
	endParent, ok := xml.Parent(root, end)
	if !ok {
		return detached(id)
	}

	var target *xml.Element
	started, reached := false, false
	root.Walk(func(n xml.Node) bool {
		if n == start {
			started = true
			return true
		}
		if !started {
			return true
		}
		if n == end {
			reached = true
			return false
		}
		if el, ok := n.(*xml.Element); ok && target == nil && el.Name.Is(nameText.Space, nameText.Local) {
			target = el
		}
		return true
	})
	if !reached {
		return &MalformedDocumentError{ID: id, Message: "comment range ends before it starts"}
	}

	if target != nil {
		target.SetChildren(xml.NewText(text))
		if strings.TrimSpace(text) != text {
			target.SetAttr(nameSpace, "preserve")
		}
	}
	startParent.RemoveChild(start)
	endParent.RemoveChild(end)
	return nil
}

// expand repeats the lowest element enclosing both markers once per child
// scope.
func (e *Engine) expand(lv *level, id string, start, end *xml.Element, scopes []*scope.Scope, depth int) error {
	startChain, ok := xml.Ancestors(lv.root, start)
	if !ok {
		return detached(id)
	}
	endChain, ok := xml.Ancestors(lv.root, end)
	if !ok {
		return detached(id)
	}

	common := 0
	for common < len(startChain) && common < len(endChain) && startChain[common] == endChain[common] {
		common++
	}
	// Both chains begin at lv.root, so common is at least 1.
	if common < 2 {
		return &MalformedDocumentError{ID: id, Message: "repeated range is not enclosed by an element"}
	}
	ancestor := startChain[common-1]
	container := startChain[common-2]

	startChain[len(startChain)-1].RemoveChild(start)
	endChain[len(endChain)-1].RemoveChild(end)

	// Ranges inside the ancestor belong to the repetitions now.
	for _, nested := range ancestor.FindAll(xml.NamespaceWordprocessingML, nameRangeStart.Local) {
		nid, _ := nested.Attr(xml.NamespaceWordprocessingML, nameID.Local)
		lv.done[nid] = true
		delete(lv.starts, nid)
		delete(lv.ends, nid)
	}

	for _, child := range scopes {
		holder := &xml.Element{Children: []xml.Node{ancestor.Clone()}}
		if err := e.renderLevel(child, holder, depth+1); err != nil {
			return err
		}
		container.InsertBefore(ancestor, holder.Children...)
	}
	container.RemoveChild(ancestor)
	return nil
}

func detached(id string) error {
	return &MalformedDocumentError{ID: id, Message: "comment range overlaps a range that was already rendered"}
}
