// Package llm is the boundary to the hosted completion service.
//
// The session only needs one capability: send a prompt, get text back.
// Client captures that, and GollmClient implements it on top of
// github.com/teilomillet/gollm so any provider gollm supports can be used.
//
// Failures are classified into sentinel errors (ErrRateLimited,
// ErrUnavailable, ErrContextTooLong, ErrAuth, ErrEmptyResponse) wrapped in
// *Error, which records whether a retry is worthwhile. NewRetryingClient
// retries retryable failures with exponential backoff and jitter:
//
//	client, err := llm.NewGollmClient(llm.GollmConfig{Provider: "openai", Model: "gpt-4o-mini"})
//	if err != nil {
//		return err
//	}
//	client = llm.NewRetryingClient(client, llm.DefaultRetryPolicy())
//	resp, err := client.Complete(ctx, llm.Request{System: sys, Prompt: prompt})
package llm
