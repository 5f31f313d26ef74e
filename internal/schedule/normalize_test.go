package schedule

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Stoughton 5B", "stoughton"},
		{"Stoughton D1", "stoughton"},
		{"Stoughton 5B D1", "stoughton"},
		{"Stoughton", "stoughton"},
		{"  Needham   6G  ", "needham"},
		{"Walpole d2", "walpole"},
		{"Oliver Ames 8B", "oliver ames"},
		{"Dover-Sherborn", "dover-sherborn"},
		// Tokens embedded mid-name are part of the name, not suffixes.
		{"D1 Hoops Academy", "d1 hoops academy"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	names := []string{"Stoughton 5B D1", "Needham 6G", "Walpole", "Oliver Ames 8B", ""}
	for _, name := range names {
		once := Normalize(name)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}
