// Package calls derives the per-call view the pipeline publishes: which party
// is the support desk, which is the customer, and whether the call was
// incoming or outgoing. The result is computed fresh for every event and
// never persisted.
package calls

import (
	"github.com/nkhandel/go-call-digest-backend/internal/directory"
	"github.com/nkhandel/go-call-digest-backend/internal/domain"
)

// Defaults used when the support party is not present in the directory and no
// manual override was supplied.
const (
	defaultAgentName  = "Support Agent"
	defaultHandle     = "@support"
	defaultDepartment = "Customer Success"
	defaultTeam       = "Support"
)

// AgentLookup is the read-side of the agent directory needed for resolution.
// *directory.Directory satisfies it.
type AgentLookup interface {
	Lookup(number string) (directory.Agent, bool)
	IsAgentNumber(number string) bool
}

// Resolved is the transient outcome of direction and agent resolution.
type Resolved struct {
	Agent          directory.Agent
	AgentKnown     bool // agent came from the directory, not defaults
	Overridden     bool // manual event overrides applied on top
	SupportNumber  string
	CustomerNumber string
	Direction      string // domain.DirectionIncoming or DirectionOutgoing
}

// Resolve labels the call. A from-number that belongs to a known agent makes
// the call outgoing with the from-party as the support desk; anything else is
// incoming with the to-party as the support desk. When both numbers resolve
// to agents the from-number wins (outgoing) — an explicit policy for
// internal-to-internal calls, not an accident of evaluation order.
//
// Manual overrides on the event replace the displayed agent identity but
// never change direction inference.
func Resolve(ev domain.CallEvent, dir AgentLookup) Resolved {
	var r Resolved
	if dir.IsAgentNumber(ev.FromNumber) {
		r.Direction = domain.DirectionOutgoing
		r.SupportNumber = ev.FromNumber
		r.CustomerNumber = ev.ToNumber
	} else {
		r.Direction = domain.DirectionIncoming
		r.SupportNumber = ev.ToNumber
		r.CustomerNumber = ev.FromNumber
	}

	if a, ok := dir.Lookup(r.SupportNumber); ok {
		r.Agent = a
		r.AgentKnown = true
	} else {
		r.Agent = directory.Agent{
			Name:       defaultAgentName,
			Handle:     defaultHandle,
			Department: defaultDepartment,
			Team:       defaultTeam,
		}
	}

	if ev.AgentName != "" {
		r.Agent.Name = ev.AgentName
		r.Overridden = true
	}
	if ev.AgentHandle != "" {
		r.Agent.Handle = ev.AgentHandle
		r.Overridden = true
	}
	if ev.Department != "" {
		r.Agent.Department = ev.Department
		r.Overridden = true
	}
	return r
}
