package services

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nkhandel/go-call-digest-backend/internal/calls"
	"github.com/nkhandel/go-call-digest-backend/internal/domain"
	"github.com/nkhandel/go-call-digest-backend/internal/summary"
)

// titleCaser renders the direction header ("Incoming" / "Outgoing").
var titleCaser = cases.Title(language.English)

// Digest is everything the formatter needs to build the published message.
type Digest struct {
	Event      domain.CallEvent
	Resolution calls.Resolved
	Transcript string
	Summary    string
	// CustomerName is the best-effort CRM display name, e.g. "Asha Rao (Acme
	// Traders)". Empty means unresolved.
	CustomerName string
}

// FormatMessage renders the digest into the notification channel's markup.
// The layout is fixed: support/customer numbers, concern excerpt, summary,
// agent identity, department, timestamp, a metadata block, the full
// transcription and a recording note. Consumers parse this visually, so field
// order is part of the contract.
func FormatMessage(d Digest) string {
	ev := d.Event
	r := d.Resolution

	handle := r.Agent.Handle
	if handle != "" && !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	if handle == "" {
		handle = "@support"
	}

	status := ev.Status
	if status == "" {
		status = "completed"
	}
	segment := ev.CustomerSegment
	if segment == "" {
		segment = "General"
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	customerLine := d.CustomerName
	if customerLine == "" {
		customerLine = d.Resolution.CustomerNumber
	}

	var b strings.Builder
	fmt.Fprintf(&b, "☎️ *%s Call Completed*\n\n", titleCaser.String(r.Direction))
	fmt.Fprintf(&b, "📞 *Support Number:*\n%s\n\n", r.SupportNumber)
	fmt.Fprintf(&b, "📱 *Candidate/Customer Number:*\n%s\n\n", r.CustomerNumber)
	fmt.Fprintf(&b, "❗ *Concern:*\n%s\n\n", summary.Concern(d.Transcript))
	if d.Summary != "" {
		fmt.Fprintf(&b, "📄 *Summary:*\n%s\n\n", d.Summary)
	}
	fmt.Fprintf(&b, "👤 *CS Agent:*\n%s <%s>\n\n", handle, r.SupportNumber)
	fmt.Fprintf(&b, "🏢 *Department:*\n%s\n\n", r.Agent.Department)
	fmt.Fprintf(&b, "⏰ *Timestamp:*\n%s\n\n", ts.UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("📋 *Call Metadata:*\n")
	fmt.Fprintf(&b, "• Call ID: `%s`\n", ev.CallID)
	fmt.Fprintf(&b, "• Duration: %ds\n", ev.DurationSeconds)
	fmt.Fprintf(&b, "• Status: %s\n", status)
	fmt.Fprintf(&b, "• Agent: %s\n", r.Agent.Name)
	fmt.Fprintf(&b, "• Customer: %s\n", customerLine)
	fmt.Fprintf(&b, "• Customer Segment: %s\n\n", segment)

	fmt.Fprintf(&b, "📝 *Full Transcription:*\n%s\n\n", strings.TrimSpace(d.Transcript))
	b.WriteString("🎧 *Recording/Voice Note:*\n[Recording available but not displayed]")
	return b.String()
}
