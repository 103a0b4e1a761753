// Package domain defines the core data types of the call pipeline: the
// immutable inbound call event and the persistent ledger row that guards
// at-most-once processing. The ledger type is mapped with GORM and shared by
// the repository, service, and CLI layers.
package domain

import "time"

// Call lifecycle statuses. A record is created as StatusClaimed, moves to
// StatusProcessing when pipeline work starts, and terminates in
// StatusPublished or StatusFailed. StatusPublished is final: no transition
// ever leaves it.
const (
	StatusClaimed    = "claimed"
	StatusProcessing = "processing"
	StatusPublished  = "published"
	StatusFailed     = "failed"
)

// Directions of a call relative to the support desk.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// CallEvent is the schema-validated call-completion event handed to the
// coordinator by the HTTP front door. It is immutable once received; the
// optional Agent* fields are manual overrides that take precedence over the
// directory for display purposes only.
type CallEvent struct {
	CallID          string
	FromNumber      string
	ToNumber        string
	DurationSeconds int
	RecordingURL    string
	Timestamp       time.Time
	Status          string

	// Manual overrides (optional).
	AgentName   string
	AgentHandle string
	Department  string

	CustomerSegment string
}

// CallRecord is the durable ledger entry for one call id. The unique primary
// key on CallID is the single serialization point of the whole system: the
// insert in repo.TryClaim either wins or observes a duplicate, which is what
// guarantees at most one pipeline run per call even under concurrent webhook
// deliveries.
//
// Fields:
//   - CallID: telephony session id, unique primary key.
//   - Status: one of the Status* constants above.
//   - ClaimedAt / CompletedAt: claim time and terminal-transition time.
//   - LastError: most recent pipeline error, for FAILED rows.
//   - Direction / AgentName / Transcript / Summary: published outcome,
//     retained for inspection.
type CallRecord struct {
	CallID          string     `json:"call_id"          gorm:"type:TEXT NOT NULL;primaryKey"`
	FromNumber      string     `json:"from_number"      gorm:"type:TEXT NOT NULL"`
	ToNumber        string     `json:"to_number"        gorm:"type:TEXT NOT NULL"`
	DurationSeconds int        `json:"duration_seconds" gorm:"not null;default:0"`
	Status          string     `json:"status"           gorm:"type:TEXT NOT NULL;index;check:status IN ('claimed','processing','published','failed')"`
	ClaimedAt       time.Time  `json:"claimed_at"       gorm:"type:DATETIME NOT NULL;index"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" gorm:"type:DATETIME"`
	LastError       string     `json:"last_error,omitempty"   gorm:"type:TEXT"`
	EventTime       time.Time  `json:"event_time"       gorm:"type:DATETIME"`
	Direction       string     `json:"direction,omitempty"    gorm:"type:TEXT"`
	AgentName       string     `json:"agent_name,omitempty"   gorm:"type:TEXT"`
	Transcript      string     `json:"transcript,omitempty"   gorm:"type:TEXT"`
	Summary         string     `json:"summary,omitempty"      gorm:"type:TEXT"`
}

// TableName implements the GORM tabler interface.
func (CallRecord) TableName() string { return "call_records" }

// Terminal reports whether the record has reached a final status.
func (r *CallRecord) Terminal() bool {
	return r.Status == StatusPublished || r.Status == StatusFailed
}
