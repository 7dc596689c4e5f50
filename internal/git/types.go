// Package git provides the git abstraction layer for version calculation.
// It defines the Repository query interface, the LocalChanges value and the
// backends that answer repository queries (go-git, the git binary, a mock).
package git

import "fmt"

// ShortShaLength is the number of characters of an abbreviated commit SHA.
const ShortShaLength = 7

// ShortSha returns the first ShortShaLength characters of sha.
func ShortSha(sha string) string {
	if len(sha) > ShortShaLength {
		return sha[:ShortShaLength]
	}
	return sha
}

// LocalChanges describes uncommitted changes in the working tree.
// The zero value is NoChanges.
type LocalChanges struct {
	FilesChanged int `json:"filesChanged"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
}

// NoChanges represents a clean working tree.
var NoChanges = LocalChanges{}

// IsZero returns true if there are no local changes.
func (c LocalChanges) IsZero() bool {
	return c == NoChanges
}

// String renders the changes as "<files> +<additions> -<deletions>".
func (c LocalChanges) String() string {
	return fmt.Sprintf("%d +%d -%d", c.FilesChanged, c.Additions, c.Deletions)
}

// ShortStats returns a human readable summary.
func (c LocalChanges) ShortStats() string {
	if c.FilesChanged+c.Additions+c.Deletions == 0 {
		return "no changes"
	}
	return fmt.Sprintf("files changed: %d, additions(+): %d, deletions(-): %d",
		c.FilesChanged, c.Additions, c.Deletions)
}
