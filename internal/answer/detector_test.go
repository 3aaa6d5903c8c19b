package answer

import (
	"slices"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		raw  string
		want Format
	}{
		{`["2 to 5 years"]`, Array},
		{`["a","b"]`, Array},
		{`"Home automation"`, Quoted},
		{`2 to 5 years`, Bare},
		{`36`, Bare},
		{`[not json`, Bare},
		{`"`, Bare},
		{``, Bare},
	}

	for _, tt := range tests {
		if got := Detect(tt.raw); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`["2 to 5 years"]`, "2 to 5 years"},
		{`"Home automation"`, "Home automation"},
		{` ["I don't have any influence"] `, "I don't have any influence"},
		{`["Energy & Utilities"]`, "Energy & Utilities"},
		{`plain`, "plain"},
		{`["a","b"]`, `["a","b"]`},
	}

	for _, tt := range tests {
		if got := Unwrap(tt.raw); got != tt.want {
			t.Errorf("Unwrap(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestElements(t *testing.T) {
	got := Elements(`["Raspberry Pi","Docker/Containers",""]`)
	want := []string{"Raspberry Pi", "Docker/Containers"}
	if !slices.Equal(got, want) {
		t.Errorf("Elements = %v, want %v", got, want)
	}

	if got := Elements(`"Kubernetes"`); !slices.Equal(got, []string{"Kubernetes"}) {
		t.Errorf("Elements(quoted) = %v", got)
	}

	if got := Elements("  "); got != nil {
		t.Errorf("Elements(blank) = %v, want nil", got)
	}
}

func TestWrapRoundTrip(t *testing.T) {
	values := []string{
		"2 to 5 years",
		"Energy & Utilities",
		"Hobbyist/Personal projects (home automation, learning, experiments)",
		`He said "hi"`,
	}

	for _, v := range values {
		if got := Unwrap(WrapSingle(v)); got != v {
			t.Errorf("Unwrap(WrapSingle(%q)) = %q", v, got)
		}
		if got := Unwrap(WrapElement(v)); got != v {
			t.Errorf("Unwrap(WrapElement(%q)) = %q", v, got)
		}
	}

	if got := WrapSingle("Energy & Utilities"); got != `["Energy & Utilities"]` {
		t.Errorf("WrapSingle escaped HTML: %s", got)
	}
}
