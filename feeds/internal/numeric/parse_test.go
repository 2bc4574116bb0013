package numeric

import "testing"

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"3.14", 3.14, true},
		{"", 0, false},
		{"not-a-number", 0, false},
		{"42", 42, true},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in)
		if ok != c.wantOK {
			t.Errorf("ParseFloat(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseFloat(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseInt_TruncatesFloatFormattedCell(t *testing.T) {
	got, ok := ParseInt("2030.0")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if got != 2030 {
		t.Errorf("expected 2030, got %d", got)
	}
}

func TestParseInt_BlankIsMissing(t *testing.T) {
	if _, ok := ParseInt(""); ok {
		t.Error("expected blank cell to report not-ok")
	}
}
