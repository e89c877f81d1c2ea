package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel conditions shared across the credential, linking and balance
// services. Callers match with errors.Is; only the session decides what is
// user-visible.
var (
	// ErrNotFound is a plain lookup miss (credential or link handle).
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable is an I/O fault on one of the backing stores.
	// Flow control treats it like a miss, but it is logged separately.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNoLinkHandle means no connected-account handle could be resolved;
	// recovery requires re-linking the brokerage login.
	ErrNoLinkHandle = errors.New("no link handle for account")

	// ErrTimeout is a balance fetch that exceeded the client deadline.
	ErrTimeout = errors.New("balance request timed out")

	// ErrUnrecognizedShape means the balance payload matched neither known
	// wire shape.
	ErrUnrecognizedShape = errors.New("unrecognized balance response shape")
)

// RemoteRejectedError is returned when the aggregation backend answered the
// balance request with a non-success result code, as opposed to a transport
// failure. An auth-failure code must re-prompt for the password; any other
// code must not touch a cached credential.
type RemoteRejectedError struct {
	Code    string
	Message string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("remote rejected: %s (%s)", e.Code, e.Message)
}

// Result codes the aggregation backend uses for a wrong or expired account
// password.
var authFailureCodes = map[string]bool{
	"CF-12100": true,
	"CF-12800": true,
	"CF-12872": true,
}

// AuthFailure reports whether the rejection was caused by bad credentials.
func (e *RemoteRejectedError) AuthFailure() bool {
	return authFailureCodes[e.Code]
}

// IsAuthFailure reports whether err is a RemoteRejectedError with an
// auth-failure code.
func IsAuthFailure(err error) bool {
	var rr *RemoteRejectedError
	return errors.As(err, &rr) && rr.AuthFailure()
}
