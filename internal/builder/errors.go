package builder

import "errors"

var (
	ErrBuildFailed      = errors.New("image build failed")
	ErrUnsupportedImage = errors.New("unsupported image declaration")
	ErrDeveloperKeys    = errors.New("invalid developer keys")
)
