package sanitize

import "testing"

func TestName(t *testing.T) {
	tests := map[string]string{
		"  Sint-Niklaas ":         "Sint-Niklaas",
		"Sint   Pieters\tLeeuw":   "Sint Pieters Leeuw",
		"<b>Boom</b>":             "Boom",
		"&lt;i&gt;Niel&lt;/i&gt;": "Niel",
	}
	for in, want := range tests {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}
