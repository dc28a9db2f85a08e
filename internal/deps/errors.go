package deps

import "errors"

var ErrMissing = errors.New("dependency missing")
