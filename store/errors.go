package store

import "errors"

// ErrNoBeginner reports that an Execer cannot begin a transaction. Sync
// does not return it: over an Execer that is not a Beginner, Sync runs its
// statements directly against that Execer.
var ErrNoBeginner = errors.New("store: execer cannot begin a transaction")

// IsNoBeginnerErr returns true if err is or wraps ErrNoBeginner.
func IsNoBeginnerErr(err error) bool { return errors.Is(err, ErrNoBeginner) }
