// Package render applies resolved comment directives to a WordprocessingML
// tree.
//
// A comment range is delimited by w:commentRangeStart and w:commentRangeEnd
// markers sharing a w:id. Scalar values replace the text of the first w:t
// inside the range. Sequence values repeat the smallest element enclosing
// both markers once per child scope; each repetition is rendered on its own
// before it is spliced into the document, which is what makes nested
// repetitions work.
//
// The engine never keeps parent pointers. Parents are found by searching
// from the root being rendered, so a marker that is no longer reachable
// (because an enclosing repetition already consumed it) is detected and
// reported as a MalformedDocumentError.
package render
