// Package tools executes tool calls recovered from model replies against a
// project directory.
//
// Three tools exist:
//
//   - read_file returns a file's contents
//   - write_file_delta applies a patch through the patch package
//   - execute_command runs a shell command in the project root
//
// Execute never fails. Every problem, from an unsafe path to a command that
// cannot start, comes back as text so it can be fed into the next turn:
//
//	ex := tools.New("/work/project")
//	for _, r := range ex.ExecuteAll(ctx, parser.Parse(reply)) {
//		fmt.Printf("Tool: %s\nResult:\n%s\n", r.Call.Name, r.Output)
//	}
//
// ExecuteAll runs calls in order because later calls may depend on files
// written by earlier ones.
//
// Shell access goes through the Runner interface. ShellRunner uses sh -c on
// POSIX systems and cmd /C on Windows.
package tools
