// Package models defines the records persisted by the offline client: cached
// payloads, queued requests and their shared update status.
package models

import "fmt"

// Status tracks whether a record reflects the latest successful network
// result. The numeric values are stored in the status columns.
type Status int

const (
	StatusNotUpdated Status = 0
	StatusUpdating   Status = 1
	StatusUpdated    Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusNotUpdated:
		return "not_updated"
	case StatusUpdating:
		return "updating"
	case StatusUpdated:
		return "updated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the known values.
func (s Status) Valid() bool {
	return s >= StatusNotUpdated && s <= StatusUpdated
}
