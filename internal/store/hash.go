package store

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// ContentHash returns a short hex digest of printed file content, recorded in
// run history to tell file versions apart.
func ContentHash(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.HashString(content))
}
