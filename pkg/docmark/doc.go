// Package docmark renders Word (.docx) templates whose reviewer comments
// carry the template logic.
//
// An author selects a range of text in Word, adds a comment and writes a
// directive as the comment text. Rendering replaces the range with the
// directive's value or repeats it once per element of a collection, and
// strips every comment from the output.
//
// # Quick Start
//
//	tmpl, err := docmark.Open("invoice.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	if err := tmpl.Render(map[string]any{
//	    "customer": map[string]any{"name": "Jane Doe"},
//	    "items": []any{
//	        map[string]any{"product": "Widget", "price": 19.99},
//	        map[string]any{"product": "Gadget", "price": 29.99},
//	    },
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := tmpl.SaveAs("invoice-out.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Directives
//
// A comment holds exactly one directive:
//
//	customer.name        value lookup through nested maps and structs
//	items[]              repeat the commented range once per element
//	'text' or "text"     a string literal
//	42, -1.5             a number literal
//	uppercase(name)      a call to a registered function
//
// Lookups that fail in a repetition's element fall back to the enclosing
// data, so a row can still refer to top-level keys.
//
// # Functions
//
// BuiltinFunctions lists the functions registered by default. Register
// your own with WithFunction or Template.RegisterFunction:
//
//	tmpl.RegisterFunction("greet", docmark.NewSimpleFunction("greet", 1, 1,
//	    func(args ...any) (any, error) {
//	        return "Hello, " + fmt.Sprint(args[0]), nil
//	    }))
//
// # Configuration
//
// Defaults come from DOCMARK_* environment variables (see
// ConfigFromEnvironment) or a YAML file (LoadConfigFile), and can be
// overridden per template with WithConfig.
package docmark
