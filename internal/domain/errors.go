package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — or when the caller is not a member of the plan
// they asked about. Membership failures deliberately look identical to
// missing plans so that plan existence is never leaked to non-members.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. plan start after plan end, unknown vehicle).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
