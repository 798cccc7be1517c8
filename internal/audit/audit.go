// Package audit keeps a change log of the species dataset: records created
// through the API and bundled dataset loads.
package audit

import "time"

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Action describes what was done.
type Action string

const (
	ActionSpeciesCreated  Action = "species_created"
	ActionLocationCreated Action = "location_created"
	ActionSpeciesLinked   Action = "species_linked"
	ActionSequenceAdded   Action = "sequence_added"
	ActionDatasetSeeded   Action = "dataset_seeded"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorType ActorType `json:"actor_type"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject,omitempty"` // scientific or location name
	Summary   string    `json:"summary"`
	Detail    string    `json:"detail,omitempty"`
}
