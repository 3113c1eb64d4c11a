package model

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain hex", "64a000000000000000000001", "64a000000000000000000001"},
		{"whitespace", "  64a000000000000000000001\n", "64a000000000000000000001"},
		{"serialized document", `{"_id": "64a000000000000000000001"}`, "64a000000000000000000001"},
		{"document with extra fields", `{"_id": "64a000000000000000000001", "name": "x"}`, "64a000000000000000000001"},
		{"malformed document passes through", `{"id": "64a000000000000000000001"}`, `{"id": "64a000000000000000000001"}`},
		{"empty", "", ""},
		{"garbage trimmed", "  nope  ", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.input); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	if !IsValidID("64a000000000000000000001") {
		t.Error("expected valid ObjectID hex to pass")
	}
	for _, bad := range []string{"", "short", "zzzz00000000000000000001", `{"_id":"64a000000000000000000001"}`} {
		if IsValidID(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}
