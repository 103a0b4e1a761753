package providers

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/nkhandel/go-call-digest-backend/internal/phone"
)

// UnknownCustomer is the display name used when the customer number matches
// nothing in the CRM export.
const UnknownCustomer = "Unknown Customer"

// Customer is one row of the CRM export.
type Customer struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Segment string `json:"segment,omitempty"`
}

// CustomerLookup resolves customer phone numbers to display names from a
// local JSON export (a map of phone number to customer record). The export is
// loaded once and swapped atomically on Reload; lookups never block behind a
// refresh. Resolution is best effort: a miss yields UnknownCustomer, never an
// error, because publishing must not depend on CRM freshness.
type CustomerLookup struct {
	path string
	snap atomic.Pointer[map[string]Customer]
}

// NewCustomerLookup creates a lookup over the export at path. An empty path
// produces a lookup that always answers UnknownCustomer.
func NewCustomerLookup(path string) *CustomerLookup {
	l := &CustomerLookup{path: path}
	empty := map[string]Customer{}
	l.snap.Store(&empty)
	return l
}

// Load reads the export from disk. Keys are canonicalized with the same
// normalization the rest of the pipeline uses, so "+91 96310 84471" in the
// export matches "09631084471" on the wire.
func (l *CustomerLookup) Load() error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read customer export: %w", err)
	}

	var raw map[string]Customer
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse customer export: %w", err)
	}

	byNumber := make(map[string]Customer, len(raw))
	for key, c := range raw {
		num := phone.Normalize(key)
		if num == phone.Unknown {
			log.Warn().Str("key", key).Msg("customer export entry has no usable phone number, skipping")
			continue
		}
		byNumber[num] = c
	}
	l.snap.Store(&byNumber)
	log.Info().Int("customers", len(byNumber)).Str("path", l.path).Msg("customer export loaded")
	return nil
}

// Reload re-reads the export, keeping the previous snapshot on error.
func (l *CustomerLookup) Reload() error { return l.Load() }

// Resolve returns the customer record for a raw phone number, matching on the
// canonical form. The second return reports whether a match was found.
func (l *CustomerLookup) Resolve(rawNumber string) (Customer, bool) {
	num := phone.Normalize(rawNumber)
	if num == phone.Unknown {
		return Customer{}, false
	}
	m := *l.snap.Load()
	c, ok := m[num]
	return c, ok
}

// DisplayName returns "Name (Company)" for known customers and
// UnknownCustomer otherwise.
func (l *CustomerLookup) DisplayName(rawNumber string) string {
	c, ok := l.Resolve(rawNumber)
	if !ok || c.Name == "" {
		return UnknownCustomer
	}
	if c.Company != "" {
		return c.Name + " (" + c.Company + ")"
	}
	return c.Name
}

// Len reports the number of loaded customers.
func (l *CustomerLookup) Len() int { return len(*l.snap.Load()) }
