package summary

import (
	"strings"
	"testing"
)

const transcript = "Customer called about a billing discrepancy on the March invoice. " +
	"The billing amount was charged twice for the same subscription period. " +
	"Agent confirmed the duplicate billing charge and raised a refund request. " +
	"Weather was discussed briefly. " +
	"Customer will receive the refund within five business days."

func TestFallback_Deterministic(t *testing.T) {
	first := Fallback(transcript)
	for i := 0; i < 3; i++ {
		if got := Fallback(transcript); got != first {
			t.Fatalf("fallback not deterministic:\n%q\n%q", got, first)
		}
	}
	if first == "" {
		t.Fatal("expected non-empty summary")
	}
}

func TestFallback_PicksDominantTopic(t *testing.T) {
	got := Fallback(transcript)
	if !strings.Contains(strings.ToLower(got), "billing") {
		t.Fatalf("summary misses the dominant topic: %q", got)
	}
	if strings.Contains(got, "Weather") {
		t.Fatalf("summary kept a low-signal sentence: %q", got)
	}
}

func TestFallback_ShortTranscriptReturnedWhole(t *testing.T) {
	in := "Line broke up.  Call dropped."
	got := Fallback(in)
	if got != "Line broke up. Call dropped" && got != "Line broke up. Call dropped." {
		// sentence splitter strips terminal punctuation of the last chunk
		if !strings.Contains(got, "Line broke up") || !strings.Contains(got, "Call dropped") {
			t.Fatalf("short transcript mangled: %q", got)
		}
	}
}

func TestFallback_Empty(t *testing.T) {
	if got := Fallback("   \n "); got != "" {
		t.Fatalf("empty transcript produced %q", got)
	}
}

func TestConcern_FirstLineClipped(t *testing.T) {
	long := strings.Repeat("a", 250) + "\nsecond line"
	got := Concern(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long concern not clipped: %q", got)
	}
	if strings.Contains(got, "second line") {
		t.Fatal("concern leaked past the first line")
	}
	if got := Concern("short issue"); got != "short issue" {
		t.Fatalf("short concern altered: %q", got)
	}
	if Concern("") != "" {
		t.Fatal("empty concern should stay empty")
	}
}
