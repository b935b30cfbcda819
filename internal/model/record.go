// Package model contains the domain records shared by all layers.
// These are pure data structures with no database-specific dependencies;
// persistence serializes them as schema-less JSON documents.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the discriminator distinguishing record types that share one
// physical store. It is fixed per concrete type at construction and never
// mutated afterwards.
type Kind string

const (
	KindEgg     Kind = "egg"
	KindFeed    Kind = "feed"
	KindMed     Kind = "med"
	KindSale    Kind = "sale"
	KindHatch   Kind = "hatch"
	KindExpense Kind = "expense"
)

// Kinds lists every known discriminator value.
func Kinds() []Kind {
	return []Kind{KindEgg, KindFeed, KindMed, KindSale, KindHatch, KindExpense}
}

// Meta carries the fields common to every record. A record is addressed by
// the composite (ID, FarmID): the store is partitioned by farm, so an ID
// alone cannot be routed to a partition.
type Meta struct {
	ID        string     `json:"id"`
	FarmID    string     `json:"farmId"`
	Kind      Kind       `json:"kind"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Metadata returns the common record metadata; concrete record types gain
// it by embedding, which is what the generic store operates on. The method
// cannot be called Meta: the embedded field of that name would shadow it on
// every concrete type.
func (m *Meta) Metadata() *Meta { return m }

// Touch marks the record as mutated.
func (m *Meta) Touch(now time.Time) {
	now = now.UTC()
	m.UpdatedAt = &now
}

func newMeta(kind Kind, farmID string) Meta {
	return Meta{
		ID:        uuid.NewString(),
		FarmID:    farmID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
