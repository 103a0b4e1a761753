package services

import (
	"strings"
	"testing"

	"github.com/nkhandel/go-call-digest-backend/internal/calls"
	"github.com/nkhandel/go-call-digest-backend/internal/directory"
	"github.com/nkhandel/go-call-digest-backend/internal/domain"
)

func TestFormatMessage_DefaultsAndHandlePrefix(t *testing.T) {
	d := Digest{
		Event: domain.CallEvent{CallID: "X1", DurationSeconds: 12},
		Resolution: calls.Resolved{
			Agent:          directory.Agent{Name: "Ravi", Handle: "ravi", Department: "Sales"},
			SupportNumber:  "9631084471",
			CustomerNumber: "9876543210",
			Direction:      domain.DirectionIncoming,
		},
		Transcript: "Short call.",
	}
	msg := FormatMessage(d)

	if !strings.Contains(msg, "@ravi <9631084471>") {
		t.Fatalf("handle not @-prefixed:\n%s", msg)
	}
	if !strings.Contains(msg, "• Status: completed") {
		t.Fatal("empty status should default to completed")
	}
	if !strings.Contains(msg, "• Customer Segment: General") {
		t.Fatal("empty segment should default to General")
	}
	if !strings.Contains(msg, "• Customer: 9876543210") {
		t.Fatal("unresolved customer should fall back to the number")
	}
	if strings.Contains(msg, "*Summary:*") {
		t.Fatal("empty summary must not render a summary section")
	}
	if !strings.Contains(msg, "🎧 *Recording/Voice Note:*") {
		t.Fatal("recording note missing")
	}
}

func TestFormatMessage_SectionOrder(t *testing.T) {
	d := Digest{
		Event: domain.CallEvent{CallID: "X2", Status: "completed"},
		Resolution: calls.Resolved{
			Agent:          directory.Agent{Name: "Ravi", Handle: "@ravi", Department: "Sales"},
			SupportNumber:  "1",
			CustomerNumber: "2",
			Direction:      domain.DirectionOutgoing,
		},
		Transcript: "Hello there.",
		Summary:    "Greeting only.",
	}
	msg := FormatMessage(d)

	order := []string{
		"*Outgoing Call Completed*",
		"*Support Number:*",
		"*Candidate/Customer Number:*",
		"*Concern:*",
		"*Summary:*",
		"*CS Agent:*",
		"*Department:*",
		"*Timestamp:*",
		"*Call Metadata:*",
		"*Full Transcription:*",
		"*Recording/Voice Note:*",
	}
	pos := -1
	for _, section := range order {
		i := strings.Index(msg, section)
		if i < 0 {
			t.Fatalf("section %q missing", section)
		}
		if i < pos {
			t.Fatalf("section %q out of order", section)
		}
		pos = i
	}
}
