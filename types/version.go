package types

import "time"

// ChangeType categorizes how a configuration version came to be.
type ChangeType string

// Change type constants
const (
	ChangeInitial  ChangeType = "initial"
	ChangeUpdate   ChangeType = "update"
	ChangeRollback ChangeType = "rollback"
)

// ConfigurationVersion is a numbered, timestamped snapshot of a Configuration.
// Numbers are sequential starting at 1 and never reused within a store.
type ConfigurationVersion struct {
	Number    int            `json:"number"`
	Config    *Configuration `json:"config"`
	AppliedAt time.Time      `json:"applied_at"`
	AppliedBy string         `json:"applied_by,omitempty"`
	Change    ChangeType     `json:"change"`
}

// RuntimeInfo is the broker's self-reported runtime state, returned by the
// runtime-info capability and merged into controller info queries.
type RuntimeInfo struct {
	ClientURL       string    `json:"client_url"`
	ServerID        string    `json:"server_id"`
	Connections     int       `json:"connections"`
	StartedAt       time.Time `json:"started_at"`
	ServerVersion   string    `json:"server_version"`
	JetStreamActive bool      `json:"jetstream_active"`
}
