package builder

import (
	"fmt"
	"os"
)

// Environment variable consulted for developer keys when no path is given.
const devKeysEnv = "GEN_DEV_KEYS"

// Loads developer public key material.
//
// An explicit path takes priority and must name a readable regular file.
// Otherwise the GEN_DEV_KEYS environment variable is consulted. Returns an
// empty string when neither source is set; keys are optional.
func LoadDeveloperKeys(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrDeveloperKeys, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDeveloperKeys, err)
		}
		return string(data), nil
	}

	return os.Getenv(devKeysEnv), nil
}
