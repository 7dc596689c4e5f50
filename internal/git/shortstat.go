package git

import (
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^(\d+)`)

// ParseShortStat parses the summary line printed by `git diff --shortstat`:
//
//	3 files changed, 5 insertions(+), 7 deletions(-)
//
// Any clause may be missing; missing clauses count as zero. Empty or
// unrecognized input yields NoChanges.
func ParseShortStat(shortStat string) LocalChanges {
	var changes LocalChanges

	for _, part := range strings.Split(shortStat, ",") {
		part = strings.TrimSpace(part)
		m := leadingNumber.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		switch {
		case strings.Contains(part, "changed"):
			changes.FilesChanged = n
		case strings.Contains(part, "(+)"):
			changes.Additions = n
		case strings.Contains(part, "(-)"):
			changes.Deletions = n
		}
	}

	return changes
}
