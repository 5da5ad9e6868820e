// Package directive parses the text of a document comment into a Directive.
//
// A directive is the unit the evaluator acts on. The language is deliberately
// tiny:
//
//	                        - empty, renders nothing
//	42, -3.5                - number literals
//	'text', "text"          - string literals, \' and \" escape the quote
//	customer.address.city   - dotted key looked up in the current scope
//	items[]                 - repeat the commented range once per element
//	upper(name, 'x', 1)     - call a registered function
//
// Parse is strict: anything the grammar does not describe is reported as a
// *SyntaxError carrying the raw comment text and the offending byte offset.
package directive
