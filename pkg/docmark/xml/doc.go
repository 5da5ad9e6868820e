// Package xml provides the generic, namespace-aware node tree docmark renders
// into.
//
// DOCX parts are XML documents whose structure docmark never needs to
// understand: the renderer only locates comment markers, rewrites text and
// clones subtrees. A typed model would drop every element it does not know,
// so parts are decoded into a loss-tolerant tree instead.
//
// # Ownership
//
// Every node is owned by exactly one parent through the parent's ordered
// Children slice. Nodes hold no parent or sibling pointers; navigation
// upwards is a query from a known root (Ancestors, Parent). This keeps the
// tree free of reference cycles and makes a detached node detectable: it
// simply cannot be found from the root any more.
//
// # Names
//
// Element and attribute names keep the prefix they were written with, so a
// part serialises back with the author's prefixes and namespace
// declarations untouched. The namespace URI each prefix was bound to at
// decode time is resolved once and stored in Name.Space; lookups match on
// Space and Local.
//
// # Structure Organization
//
//   - node.go: node types and tree operations
//   - decode.go: building a Document from bytes
//   - encode.go: serialising a Document or subtree
//   - namespaces.go: OOXML namespace URIs
package xml
