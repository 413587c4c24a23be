package observed

import "errors"

// Sentinel errors for registration and dispatch.
var (
	// ErrUnsupportedCallable reports an observer or wrap target that is
	// neither a func nor an (owner, method name) pair this package can track.
	ErrUnsupportedCallable = errors.New("unsupported callable")

	// ErrArgumentMismatch reports arguments that cannot be passed to a
	// callable's parameter list.
	ErrArgumentMismatch = errors.New("argument mismatch")

	// ErrOwnerGone reports a Call on a method registry whose owning
	// instance has already been collected.
	ErrOwnerGone = errors.New("owning instance collected")
)
