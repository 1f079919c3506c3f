package config

import (
	"os"
	"strings"
)

// enabled reads a boolean switch. Anything other than unset, empty, "0" or
// "false" turns it on.
func enabled(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	}
	return true
}

func Development() bool {
	return enabled("DEVELOPMENT")
}
