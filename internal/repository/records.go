// Package repository contains data access layer abstractions for the
// partitioned record store. Implementations live in subpackages (postgres).
package repository

import (
	"context"

	"farmledger/internal/model"
)

// Entity is anything carrying record metadata. Concrete model types satisfy
// it by embedding model.Meta.
type Entity interface {
	Metadata() *model.Meta
}

// RecordStore is the generic, partition-scoped persistence contract.
// Every operation requires the farm id explicitly: records are addressed by
// the composite (id, farmID) and a lookup without a partition key is a
// caller contract violation, not a full scan.
//
// Failure semantics follow the fault taxonomy: fault.AlreadyExists on id
// collision in Create, fault.NotFound on a Get miss, fault.InvalidArgument
// on a missing partition key, fault.Unavailable on transient backend
// errors. The store never retries internally; retry policy belongs to the
// caller, which knows whether the operation is idempotent in its context.
type RecordStore[P Entity] interface {
	// Create inserts a new record. The id must not already exist within
	// the partition.
	Create(ctx context.Context, rec P, farmID string) (P, error)

	// Get returns the record addressed by (id, farmID).
	Get(ctx context.Context, id, farmID string) (P, error)

	// Upsert replaces the full document, inserting it if absent. The
	// stored record's UpdatedAt is stamped on every call.
	Upsert(ctx context.Context, rec P, farmID string) (P, error)

	// Delete removes the record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id, farmID string) error

	// Query streams records matching the filter. The cursor is finite,
	// forward-only, and not restartable; closing it early stops fetching
	// from the backend.
	Query(ctx context.Context, f *Filter) (Cursor[P], error)
}

// Cursor iterates a query result. Usage mirrors sql.Rows:
//
//	for cur.Next() {
//		rec := cur.Record()
//		...
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor[P any] interface {
	Next() bool
	Record() P
	Err() error
	Close() error
}
