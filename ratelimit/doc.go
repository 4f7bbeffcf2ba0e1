// Package ratelimit gates completion requests against a tokens-per-minute
// quota.
//
// A Limiter keeps a sliding 60 second window of recorded token usage and the
// time of the last admitted request. Before each request the caller asks how
// long it must wait:
//
//	lim := ratelimit.New(ratelimit.Config{
//		MaxTokensPerMinute: 20000,
//		MinInterval:        time.Second,
//	})
//
//	waited, err := lim.Wait(ctx)
//	if err != nil {
//		return err
//	}
//	resp := complete(...)
//	lim.Record(estimate, time.Now())
//
// The minimum interval is owed first. If the window is still at or over
// budget once that interval has elapsed, the caller waits until the oldest
// entry leaves the window plus a 100ms margin. The two waits overlap; the
// longer one wins.
//
// Admit and Record take the current time explicitly so the accounting is
// deterministic under test. Wait uses the limiter's Clock.
//
// All methods are safe for concurrent use, though a session is expected to
// keep one request in flight.
package ratelimit
