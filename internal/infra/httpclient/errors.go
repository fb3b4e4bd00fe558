package httpclient

import "errors"

// ErrNotFound maps a collaborator's 404 so callers can translate it into
// their own domain error.
var ErrNotFound = errors.New("resource not found")
