package atsp

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ArrayStringFlags is a flag.Value for option lists. Every occurrence of the
// flag adds to the list, and one occurrence may carry several comma
// separated entries: -model DFJ,MTZ -model GG.
type ArrayStringFlags []string

func (a *ArrayStringFlags) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(*a, ",")
}

func (a *ArrayStringFlags) Set(value string) error {
	*a = append(*a, splitList(value)...)
	return nil
}

// ArrayIntFlags is the integer version of ArrayStringFlags, used for sizes
// like -n 10,20 -n 50. A bad entry rejects the whole occurrence.
type ArrayIntFlags []int

func (a *ArrayIntFlags) String() string {
	if a == nil {
		return ""
	}
	parts := make([]string, len(*a))
	for k, v := range *a {
		parts[k] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (a *ArrayIntFlags) Set(value string) error {
	entries := splitList(value)
	vals := make([]int, 0, len(entries))
	for _, s := range entries {
		v, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "bad list entry %q", s)
		}
		vals = append(vals, v)
	}
	*a = append(*a, vals...)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
