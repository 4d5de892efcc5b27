package llm

import "errors"

// ErrRateLimited reports that the chat provider rejected the call because of
// quota exhaustion. The HTTP layer maps it to a distinct cool-down message
// instead of the generic failure text.
var ErrRateLimited = errors.New("chat provider rate limited")
