// Package cache provides the client-side persistence layer for downloaded
// payloads keyed by URL.
//
// # Overview
//
// One Repository implementation serves both the data cache and the image
// cache; the Table passed to NewSQLiteRepository selects which. Both tables
// share the (url, payload, status, updated_at) layout.
//
// # Data Model
//
// url is the primary key, so there is at most one record per URL per cache.
// Put is a single UPSERT that writes payload and status together: readers
// never see a new payload with an old status or the reverse.
//
// Typical Usage
//
//	repo := cache.NewSQLiteRepository(db, cache.TableData)
//	rec, _ := repo.Get(ctx, url) // nil, nil on miss
//	_ = repo.MarkUpdating(ctx, url)
//	_ = repo.Put(ctx, url, payload)
//	n, _ := repo.Flush(ctx)
package cache
