// Package store holds the record store the ledger persists through. A store
// exposes whole collections only: LoadAll returns every record of a
// collection and SaveAll replaces the collection wholesale.
package store

import (
	"context"
	"encoding/json"
)

// Collection names
const (
	Users     = "users"
	Rewards   = "rewards"
	Claims    = "claims"
	Tasks     = "tasks"
	Questions = "questions"
)

// AllCollections lists every collection the application persists
var AllCollections = []string{Users, Rewards, Claims, Tasks, Questions}

// Record is one keyed entry of a collection
type Record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// RecordStore is the persistence contract. LoadAll returns an empty slice
// when the collection does not exist; SaveAll fully replaces it.
type RecordStore interface {
	LoadAll(ctx context.Context, collection string) ([]Record, error)
	SaveAll(ctx context.Context, collection string, records []Record) error
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		data := make(json.RawMessage, len(r.Data))
		copy(data, r.Data)
		out[i] = Record{ID: r.ID, Data: data}
	}
	return out
}
