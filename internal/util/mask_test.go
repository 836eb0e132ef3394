package util

import "testing"

func TestMaskID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{"abc", "a…"},
		{"12345678", "1…"},
		{"4f2a9c11-77aa-4b0e-9f00-1d2e3f4a5b6c", "4f2a…5b6c"},
	}
	for _, tc := range cases {
		if got := MaskID(tc.in); got != tc.want {
			t.Errorf("MaskID(%q) = %q, esperaba %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("super-secreto"); got != "********" {
		t.Fatalf("MaskSecret = %q", got)
	}
	if got := MaskSecret(""); got != "" {
		t.Fatalf("MaskSecret de vacío = %q", got)
	}
}
