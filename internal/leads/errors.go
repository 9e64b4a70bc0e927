package leads

import "errors"

// ErrMissingRequired indicates the submission lacks a name or email.
var ErrMissingRequired = errors.New("name and email are required")
