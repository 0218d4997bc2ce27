package entity

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(v string) (Visibility, bool) {
	switch Visibility(v) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(v), true
	}
	return "", false
}

// ObjectACL records the access intent for an uploaded object.
type ObjectACL struct {
	ObjectPath string     `db:"object_path"`
	Visibility Visibility `db:"visibility"`
	Owner      string     `db:"owner"`
	UpdatedAt  time.Time  `db:"updated_at"`
}
