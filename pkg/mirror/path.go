package mirror

import (
	"path"
	"path/filepath"
	"strings"
)

// JoinRemote joins the non-blank parts with forward slashes,
// any backslash is taken as a separator as well.
// The result is cleaned, so ".." consumes the preceding element,
// and a later absolute part never re-roots it: "/a" and "/b" join to "/a/b".
func JoinRemote(parts ...string) string {
	ps := make([]string, 0, len(parts))

	for _, p := range parts {
		if p == "" {
			continue
		}

		ps = append(ps, strings.ReplaceAll(p, `\`, "/"))
	}

	if len(ps) == 0 {
		return ""
	}

	return path.Join(ps...)
}

// RelativeOffset returns the local relative path from root to p,
// blank for root itself.
func RelativeOffset(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}

	if rel == "." {
		return ""
	}

	return rel
}
