// Command docmark renders .docx templates whose reviewer comments hold
// directives.
//
// Usage:
//
//	# Render once
//	docmark render invoice.docx --data invoice.yaml --out out.docx
//
//	# List the directives a template contains
//	docmark inspect invoice.docx
//
//	# Re-render whenever the template or the data changes
//	docmark watch invoice.docx --data invoice.yaml --out out.docx
package main

func main() {
	Execute()
}
