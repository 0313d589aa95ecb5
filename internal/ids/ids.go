package ids

import "github.com/segmentio/ksuid"

// New returns a sortable, URL-safe entity identifier.
func New() string {
	return ksuid.New().String()
}
