package infra

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads each env file in order, skipping files that do not exist.
// Keys already present in the environment are kept, so earlier files win.
// It returns the files that were loaded.
func LoadDotEnv(files ...string) ([]string, error) {
	var loaded []string
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
