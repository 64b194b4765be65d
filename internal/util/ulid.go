package util

import "github.com/oklog/ulid/v2"

// NewULID generates a new ULID string. Ids made within the same
// millisecond sort in creation order.
func NewULID() string {
	return ulid.Make().String()
}
