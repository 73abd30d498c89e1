// Package common contains shared constants and sentinel errors used across
// the offline client components.
package common

// DefaultContentType is sent with queued requests that carry no explicit
// Content-Type header.
const DefaultContentType = "application/octet-stream"

// CorrelationIDHeaderName carries the per-attempt id on outbound HTTP
// requests so server logs can be matched with client logs.
const CorrelationIDHeaderName = "X-Request-Id"
