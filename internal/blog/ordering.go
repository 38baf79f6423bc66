package blog

import (
	"strings"

	"blogpress/internal/apperr"
)

// Ordering is a validated sort key for post listings.
type Ordering struct {
	Field string
	Desc  bool
}

// DefaultOrdering lists newest posts first.
var DefaultOrdering = Ordering{Field: "created_at", Desc: true}

var orderingFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
	"views":        true,
	"likes":        true,
	"title":        true,
}

// ParseOrdering parses "field" or "-field". An empty string yields the
// default ordering; unknown fields are a validation error.
func ParseOrdering(s string) (Ordering, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultOrdering, nil
	}
	o := Ordering{Field: s}
	if strings.HasPrefix(s, "-") {
		o = Ordering{Field: s[1:], Desc: true}
	}
	if !orderingFields[o.Field] {
		return Ordering{}, apperr.Invalid("ordering", "unsupported ordering field "+o.Field)
	}
	return o, nil
}

// String returns the ordering in its query-parameter form.
func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// IsZero reports whether no ordering was set.
func (o Ordering) IsZero() bool {
	return o.Field == ""
}
