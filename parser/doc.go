// Package parser recovers tool invocations from free-form model replies.
//
// Two syntaxes are recognized. A patch block targets one file:
//
//	CHANGE: src/lib.rs
//	<<<<<<< CURRENT
//	pub fn old() {}
//	=======
//	pub fn new() {}
//	>>>>>>> NEW
//
// and simple calls appear inline, one per line:
//
//	read_file("src/main.rs")
//	read_file: "src/main.rs"
//	execute_command: "cargo check"
//
// A reply that contains at least one complete patch block yields only its
// write_file_delta calls; simple calls are scanned only when no block was
// found (WithUnion relaxes this). Markdown fences are removed before
// scanning because models wrap either syntax in them at random.
//
// Parsing never fails. Malformed or absent syntax produces an empty result
// and the caller decides what "no tools" means.
//
// Example usage:
//
//	calls := parser.Parse(reply)
//	for _, call := range calls {
//	    fmt.Printf("%s %q\n", call.Name, call.Parameter)
//	}
package parser
