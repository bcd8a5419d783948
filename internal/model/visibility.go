package model

import "fmt"

// Visibility 可见性标签，随 item / follow 边持久化
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"  // owner + friends of owner
	VisibilityPersonal Visibility = "personal" // owner only, never fanned out
)

// ParseVisibility validates a raw tag. Unknown tags are an error, never a
// silent default.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate, VisibilityPersonal:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// CanSee is the single access rule for all item types.
func (v Visibility) CanSee(viewerIsOwner, viewerIsFriend bool) (bool, error) {
	switch v {
	case VisibilityPublic:
		return true, nil
	case VisibilityPrivate:
		return viewerIsOwner || viewerIsFriend, nil
	case VisibilityPersonal:
		return viewerIsOwner, nil
	}
	return false, fmt.Errorf("unknown visibility %q", string(v))
}
