package build

import "errors"

var ErrCollect = errors.New("artifact collection failed")
