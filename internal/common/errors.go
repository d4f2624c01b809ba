package common

import "errors"

// ErrForbidden marks an operation on a row the caller does not own and
// has no instructor/admin authority over.
var ErrForbidden = errors.New("forbidden")
