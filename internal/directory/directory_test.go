package directory

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const jsonDirectory = `{
  "_comment": {"name": "keys starting with underscore are documentation"},
  "+919631084471": {"name": "Asha Verma", "slack_handle": "@asha", "department": "Customer Success", "team": "Support"},
  "09876543210": {"name": "Ravi Iyer", "slack_handle": "ravi", "department": "Sales", "team": "Inbound"},
  "garbage-key": {"name": "No Digits"},
  "+911112223334": {"name": 42}
}`

func TestLoad_JSON(t *testing.T) {
	d := New(writeFile(t, "agents.json", jsonDirectory))
	if err := d.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d; want 2 (comment, digitless and malformed entries skipped)", d.Len())
	}

	a, ok := d.Lookup("09631084471")
	if !ok {
		t.Fatal("expected lookup hit via trunk-zero rendering")
	}
	if a.Name != "Asha Verma" || a.Handle != "@asha" {
		t.Fatalf("unexpected agent: %+v", a)
	}
	if a.Number != "9631084471" {
		t.Fatalf("agent key not canonical: %q", a.Number)
	}
}

func TestLoad_TOML(t *testing.T) {
	content := `
["+919631084471"]
name = "Asha Verma"
slack_handle = "@asha"
department = "Customer Success"
team = "Support"
languages = ["hi", "en"]

["_note"]
name = "ignored"
`
	d := New(writeFile(t, "agents.toml", content))
	if err := d.Load(); err != nil {
		t.Fatalf("load toml: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d; want 1", d.Len())
	}
	a, _ := d.Lookup("91-963-108-4471")
	if len(a.Languages) != 2 {
		t.Fatalf("languages not decoded: %+v", a)
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse([]byte("x"), ".yaml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParse_StructurallyBrokenFile(t *testing.T) {
	if _, err := Parse([]byte("{not json"), ".json"); err == nil {
		t.Fatal("expected parse error for unreadable file")
	}
}

func TestReload_BadFileKeepsSnapshot(t *testing.T) {
	path := writeFile(t, "agents.json", jsonDirectory)
	d := New(path)
	if err := d.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := d.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	// Previous snapshot still answers lookups.
	if !d.IsAgentNumber("+919631084471") {
		t.Fatal("good snapshot was discarded after failed reload")
	}
}

func TestReload_AtomicSwapUnderReaders(t *testing.T) {
	path := writeFile(t, "agents.json", jsonDirectory)
	d := New(path)
	if err := d.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// Readers must always see a complete map: either both agents
				// or whatever a full reload published, never a partial build.
				if n := d.Len(); n != 2 {
					t.Errorf("observed partial snapshot of size %d", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if err := d.Reload(); err != nil {
			t.Fatalf("reload: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestIsAgentNumber_UnknownSentinel(t *testing.T) {
	d := New(writeFile(t, "agents.json", jsonDirectory))
	if err := d.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.IsAgentNumber("") {
		t.Fatal("empty input must never resolve to an agent")
	}
}
