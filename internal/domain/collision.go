package domain

import "fmt"

// CollisionPolicy decides what happens when the destination folder already
// holds a file with the same name.
type CollisionPolicy string

const (
	// CollisionSkip leaves the source in place and reports a conflict.
	CollisionSkip CollisionPolicy = "skip"
	// CollisionRename appends " (n)" before the extension until the name is free.
	CollisionRename CollisionPolicy = "rename"
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite CollisionPolicy = "overwrite"
)

// ParseCollisionPolicy parses a policy name. An empty string yields CollisionSkip.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case "", CollisionSkip:
		return CollisionSkip, nil
	case CollisionRename:
		return CollisionRename, nil
	case CollisionOverwrite:
		return CollisionOverwrite, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q (must be skip, rename, or overwrite)", s)
	}
}
