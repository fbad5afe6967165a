// Package dotenv loads KEY=VALUE pairs from a local .env file into the
// process environment for development convenience. Variables already set
// in the environment win.
package dotenv

import (
	"bufio"
	"os"
	"strings"
)

// Load reads .env from the working directory if present. A missing file
// is not an error.
func Load() error {
	return LoadFile(".env")
}

// LoadFile reads the given file and sets any variable that is not
// already present in the environment. Lines starting with # and blank
// lines are ignored; values may be wrapped in single or double quotes.
func LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
