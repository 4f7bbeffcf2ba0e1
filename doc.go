// Package botcoder is a coding agent that lets a language model read,
// patch and test a project through a small text tool protocol.
//
// The packages can be used on their own:
//
//   - parser: extract tool calls and patch blocks from model replies
//   - patch: apply exact-substring replacements confined to a project root
//   - tools: dispatch tool calls to file reads, patches and shell commands
//   - ratelimit: sliding-window tokens-per-minute budget with request spacing
//   - tokens: token counting by estimate or BPE encoding
//   - truncate: token-aware clipping of tool output
//   - llm: completion client over gollm with retries and error classification
//   - config: file, environment and dotenv configuration with hot reload
//   - session: the conversational turn loop tying them together
//
// # Quick Start
//
// Parsing a reply:
//
//	import "github.com/GeneralBots/botcoder/parser"
//	for _, call := range parser.Parse(reply) {
//		fmt.Println(call)
//	}
//
// Applying a patch:
//
//	import "github.com/GeneralBots/botcoder/patch"
//	out := patch.Apply("/path/to/project", "main.go", "old()", "renamed()")
//	fmt.Println(out)
//
// Running a session:
//
//	import "github.com/GeneralBots/botcoder/session"
//	cfg, _ := config.Resolve("botcoder.yaml")
//	client, _ := llm.NewGollmClient(cfg.Gollm(nil))
//	sess, _ := session.New(cfg, llm.NewRetryingClient(client, cfg.RetryPolicy()))
//	res, _ := sess.Turn(ctx, "run the tests and fix what fails")
//
// The botcoder command in cmd/botcoder wraps a session in an interactive
// terminal chat.
package botcoder
