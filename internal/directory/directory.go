// Package directory maintains the in-memory lookup of support agents keyed by
// canonical phone number. The backing file (JSON or TOML) is maintained by
// operations people, so loading is deliberately forgiving: comment entries are
// skipped, malformed entries are logged and dropped, and a bad file never
// replaces a good snapshot.
//
// Concurrency model: the agent map is read-mostly and shared by every
// in-flight pipeline. Reload builds a complete replacement map and publishes
// it with a single atomic pointer swap, so readers always observe either the
// old or the new directory, never a partially built one.
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/nkhandel/go-call-digest-backend/internal/phone"
)

// commentPrefix marks file keys that are documentation, not agents.
const commentPrefix = "_"

// ErrUnsupportedFormat is returned for directory files that are neither JSON
// nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported directory format")

// Agent is one known support agent. Number holds the canonical
// (phone.Normalize'd) key.
type Agent struct {
	Number     string   `json:"number"`
	Name       string   `json:"name"`
	Handle     string   `json:"slack_handle"`
	Department string   `json:"department"`
	Team       string   `json:"team"`
	Shift      string   `json:"shift,omitempty"`
	Languages  []string `json:"languages,omitempty"`
}

// fileEntry is the on-disk shape of a single agent record.
type fileEntry struct {
	Name       string   `json:"name" toml:"name"`
	Handle     string   `json:"slack_handle" toml:"slack_handle"`
	Department string   `json:"department" toml:"department"`
	Team       string   `json:"team" toml:"team"`
	Shift      string   `json:"shift" toml:"shift"`
	Languages  []string `json:"languages" toml:"languages"`
}

// Directory is the atomically swappable agent lookup. The zero value is not
// usable; construct with New.
type Directory struct {
	path string
	snap atomic.Pointer[map[string]Agent]
}

// New returns a Directory bound to path with an empty snapshot published.
// Call Reload (or Load) to populate it.
func New(path string) *Directory {
	d := &Directory{path: path}
	empty := map[string]Agent{}
	d.snap.Store(&empty)
	return d
}

// Load populates the directory from its file. It is an alias for Reload kept
// for readability at startup call sites.
func (d *Directory) Load() error { return d.Reload() }

// Reload parses the backing file and atomically swaps in the fresh map.
// On any file-level error the previous snapshot stays published.
func (d *Directory) Reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return err
	}
	agents, err := Parse(data, filepath.Ext(d.path))
	if err != nil {
		return err
	}
	d.snap.Store(&agents)
	log.Info().Str("path", d.path).Int("agents", len(agents)).Msg("agent directory loaded")
	return nil
}

// Parse decodes directory file content into a canonical-number → Agent map.
// ext selects the format (".json" or ".toml"). Individual malformed entries,
// comment keys, and keys that do not normalize to a usable number are skipped
// with a warning; only a structurally unreadable file fails the parse.
func Parse(data []byte, ext string) (map[string]Agent, error) {
	var raw map[string]fileEntry
	var malformed []string

	switch strings.ToLower(ext) {
	case ".json", "":
		var loose map[string]json.RawMessage
		if err := json.Unmarshal(data, &loose); err != nil {
			return nil, fmt.Errorf("parse directory: %w", err)
		}
		raw = make(map[string]fileEntry, len(loose))
		for k, v := range loose {
			var e fileEntry
			if err := json.Unmarshal(v, &e); err != nil {
				malformed = append(malformed, k)
				continue
			}
			raw[k] = e
		}
	case ".toml":
		var prims map[string]toml.Primitive
		md, err := toml.Decode(string(data), &prims)
		if err != nil {
			return nil, fmt.Errorf("parse directory: %w", err)
		}
		raw = make(map[string]fileEntry, len(prims))
		for k, p := range prims {
			var e fileEntry
			if err := md.PrimitiveDecode(p, &e); err != nil {
				malformed = append(malformed, k)
				continue
			}
			raw[k] = e
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	agents := make(map[string]Agent, len(raw))
	for key, e := range raw {
		if strings.HasPrefix(key, commentPrefix) {
			continue
		}
		canon := phone.Normalize(key)
		if canon == phone.Unknown {
			log.Warn().Str("key", key).Msg("agent entry skipped: key has no usable digits")
			continue
		}
		if e.Name == "" {
			malformed = append(malformed, key)
			continue
		}
		if _, dup := agents[canon]; dup {
			log.Warn().Str("key", key).Str("number", canon).Msg("agent entry skipped: duplicate number after normalization")
			continue
		}
		agents[canon] = Agent{
			Number:     canon,
			Name:       e.Name,
			Handle:     e.Handle,
			Department: e.Department,
			Team:       e.Team,
			Shift:      e.Shift,
			Languages:  e.Languages,
		}
	}
	for _, k := range malformed {
		log.Warn().Str("key", k).Msg("agent entry skipped: malformed record")
	}
	return agents, nil
}

// Lookup normalizes number and returns the matching agent, if any.
func (d *Directory) Lookup(number string) (Agent, bool) {
	canon := phone.Normalize(number)
	if canon == phone.Unknown {
		return Agent{}, false
	}
	a, ok := (*d.snap.Load())[canon]
	return a, ok
}

// IsAgentNumber reports whether number belongs to a known agent.
func (d *Directory) IsAgentNumber(number string) bool {
	_, ok := d.Lookup(number)
	return ok
}

// Len returns the number of agents in the current snapshot.
func (d *Directory) Len() int {
	return len(*d.snap.Load())
}
