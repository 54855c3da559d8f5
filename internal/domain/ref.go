package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RefKind tells whether a GenreRef points at a persisted genre or at a
// genre that only exists inside a correction.
type RefKind string

// Reference kinds.
const (
	RefExists  RefKind = "EXISTS"
	RefCreated RefKind = "CREATED"
)

// GenreRef identifies a genre in the context of a correction.
// EXISTS refs carry a genre ID, CREATED refs carry a correction-local ID.
// GenreRef is comparable and is used directly as a map key.
type GenreRef struct {
	Kind RefKind `json:"type" validate:"required,oneof=EXISTS CREATED"`
	ID   int     `json:"id" validate:"gte=0"`
}

// ExistingRef returns a reference to a persisted genre.
func ExistingRef(id int) GenreRef {
	return GenreRef{Kind: RefExists, ID: id}
}

// CreatedRef returns a reference to a genre created inside a correction.
func CreatedRef(localID int) GenreRef {
	return GenreRef{Kind: RefCreated, ID: localID}
}

// IsExisting reports whether the ref points at a persisted genre.
func (r GenreRef) IsExisting() bool { return r.Kind == RefExists }

// IsCreated reports whether the ref points at a correction-local genre.
func (r GenreRef) IsCreated() bool { return r.Kind == RefCreated }

// String renders the ref for logs and error messages.
func (r GenreRef) String() string {
	return strings.ToLower(string(r.Kind)) + ":" + strconv.Itoa(r.ID)
}

// ParseRefKind parses a kind from a URL segment ("exists" or "created", any case).
func ParseRefKind(s string) (RefKind, error) {
	switch strings.ToUpper(s) {
	case string(RefExists):
		return RefExists, nil
	case string(RefCreated):
		return RefCreated, nil
	default:
		return "", fmt.Errorf("unknown genre reference kind %q", s)
	}
}
