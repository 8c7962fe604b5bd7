package evr

import "testing"

func TestCompareBasic(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "2.0", -1},
		{"2.0", "1.0", 1},
		{"1:1.0", "2:0.1", -1},
		{"1.0-1", "1.0-2", -1},
		{"1.0.1", "1.0.2", -1},
		{"1.2.3-alpha", "1.2.3-beta", -1},
	}
	for _, c := range cases {
		got := Compare(c.a, c.b)
		norm := func(n int) int {
			switch {
			case n < 0:
				return -1
			case n > 0:
				return 1
			}
			return 0
		}
		if norm(got) != c.want {
			t.Errorf("Compare(%q, %q) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	e := Parse("2:1.4.0-3")
	if e.Epoch != 2 || e.Version != "1.4.0" || e.Release != "3" {
		t.Fatalf("Parse(2:1.4.0-3) = %+v", e)
	}
	if s := e.String(); s != "2:1.4.0-3" {
		t.Fatalf("String() = %q", s)
	}
}
