package models

import "time"

// CacheRecord is one cached payload keyed by URL. The same shape backs both
// the data cache and the image cache; for images Payload is the encoded
// image blob.
type CacheRecord struct {
	// URL is the unique key within a cache.
	URL string

	// Payload holds the bytes of the last successful download.
	Payload []byte

	// Status is the update status of the record.
	Status Status

	// UpdatedAt is the time of the last write, in UTC.
	UpdatedAt time.Time
}

// PendingRequest is one undelivered outgoing call.
type PendingRequest struct {
	// ID is the queue sequence number; ascending ID is delivery order.
	ID int64

	// SerializedRequest is the encoded Request (see EncodeRequest).
	SerializedRequest []byte

	Status Status

	CreatedAt time.Time
}
