package envutil

import (
	"os"
	"strings"
)

// String reads name from the environment, falling back to def when unset
// or blank.
func String(name string, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}
