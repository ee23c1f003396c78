// Package patch builds column updates from partial request bodies. A nil
// field is left untouched.
package patch

import "strings"

type Patch map[string]any

// New starts a patch stamped with the acting user.
func New(actorID string) Patch {
	return Patch{"updated_by": actorID}
}

// Set writes v to col when v is present.
func Set[T any](p Patch, col string, v *T) {
	if v != nil {
		p[col] = *v
	}
}

// Text writes an optional text column. A blank value clears it to NULL.
func Text(p Patch, col string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		p[col] = nil
		return
	}
	p[col] = *v
}
