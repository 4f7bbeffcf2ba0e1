// Package session runs the conversational turn loop of the coding agent.
//
// A turn renders the conversation into a prompt, waits for the rate
// limiter, asks the completion service for a reply, extracts tool calls
// from it, executes them in order inside the project root, and appends the
// reply and the tool results to a bounded history:
//
//	sess, err := session.New(cfg, client)
//	if err != nil {
//		return err
//	}
//	res, err := sess.Turn(ctx, "add a unit test for parse_args")
//	for _, r := range res.Results {
//		fmt.Println(r.Call, r.Output)
//	}
//
// Tool failures never fail a turn; they are fed back to the model as text.
// Turn returns an error only when the completion service fails or ctx ends.
package session
