package version

import "errors"

var ErrUndetermined = errors.New("version undetermined")
