// Package common defines shared constants and sentinel errors used across
// the storage, network and engine layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Network-level errors.
	ErrUnavailable       = errors.New("network unavailable")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrBodyTooLarge      = errors.New("response body too large")

	// Engine-level errors.
	ErrSyncInProgress = errors.New("synchronize already in progress")
	ErrEngineClosed   = errors.New("engine closed")
	ErrInvalidRequest = errors.New("invalid request")
)
