package phone

import "testing"

func TestNormalize_EquivalentFormats(t *testing.T) {
	variants := []string{
		"09631084471",
		"+919631084471",
		"91-963-108-4471",
		"91 963 108 4471",
		"(0) 96310-84471",
		"9631084471",
	}
	want := "9631084471"
	for _, v := range variants {
		if got := Normalize(v); got != want {
			t.Fatalf("Normalize(%q) = %q; want %q", v, got, want)
		}
	}
}

func TestNormalize_MalformedInput(t *testing.T) {
	for _, in := range []string{"", "   ", "n/a", "+-()"} {
		if got := Normalize(in); got != Unknown {
			t.Fatalf("Normalize(%q) = %q; want sentinel %q", in, got, Unknown)
		}
	}
}

func TestNormalize_ShortNumberKept(t *testing.T) {
	if got := Normalize("1800-425"); got != "1800425" {
		t.Fatalf("Normalize short = %q; want %q", got, "1800425")
	}
}

func TestNormalize_Pure(t *testing.T) {
	in := "+91 96310 84471"
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		if got := Normalize(in); got != first {
			t.Fatalf("Normalize not deterministic: %q vs %q", got, first)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("09631084471", "+919631084471") {
		t.Fatal("expected equivalent renderings to compare equal")
	}
	if Equal("", "") {
		t.Fatal("two unknown numbers must never compare equal")
	}
	if Equal("9631084471", "9876543210") {
		t.Fatal("distinct numbers compared equal")
	}
}
