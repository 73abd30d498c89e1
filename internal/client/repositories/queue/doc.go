// Package queue provides the durable FIFO of outgoing requests that could
// not be delivered.
//
// Records are ordered by an AUTOINCREMENT sequence id, so the order survives
// restarts and ids are never reused after deletion. Successful delivery
// removes a record; no history is kept.
package queue
