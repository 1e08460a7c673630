package gateway

import (
	"errors"
	"fmt"
)

// ErrRemoteUnavailable marks a transport-level failure: the request never
// produced an HTTP response. Callers keep their prior local state.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// RemoteError is a non-2xx application response from the store.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store rejected request: status %d: %s", e.StatusCode, e.Body)
}
