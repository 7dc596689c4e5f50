package git

import (
	"fmt"
	"strconv"
	"strings"
)

// RevListOptions narrows a commit walk. It is the parsed form of the extra
// arguments accepted by Repository.CommitsUpTo.
type RevListOptions struct {
	// FirstParent follows only the first parent of merge commits.
	FirstParent bool

	// MaxCount limits the number of commits returned. Zero means no limit.
	MaxCount int
}

// ParseRevListArgs parses the supported subset of `git rev-list` arguments:
// --first-parent, --max-count=<n> and -n <n>.
func ParseRevListArgs(args ...string) (RevListOptions, error) {
	var opts RevListOptions

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		switch {
		case arg == "":
		case arg == "--first-parent":
			opts.FirstParent = true
		case strings.HasPrefix(arg, "--max-count="):
			n, err := parseCount(strings.TrimPrefix(arg, "--max-count="))
			if err != nil {
				return RevListOptions{}, err
			}
			opts.MaxCount = n
		case arg == "-n":
			if i+1 >= len(args) {
				return RevListOptions{}, fmt.Errorf("missing value for -n")
			}
			i++
			n, err := parseCount(args[i])
			if err != nil {
				return RevListOptions{}, err
			}
			opts.MaxCount = n
		default:
			return RevListOptions{}, fmt.Errorf("unsupported rev-list argument %q", arg)
		}
	}

	return opts, nil
}

// Limit truncates commits to MaxCount when it is set.
func (o RevListOptions) Limit(commits []string) []string {
	if o.MaxCount > 0 && len(commits) > o.MaxCount {
		return commits[:o.MaxCount]
	}
	return commits
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid commit count %q", s)
	}
	return n, nil
}
