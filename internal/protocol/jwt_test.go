package protocol

import (
	"encoding/base64"
	"testing"
)

func TestIsJWT(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"a.b.c", true},
		{"eyJ.eyJ.sig", true},
		{"not-a-jwt", false},
		{"a.b", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsJWT(tt.input); got != tt.want {
			t.Errorf("IsJWT(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitToken(t *testing.T) {
	h, c, s, err := SplitToken("aaa.bbb.ccc")
	if err != nil {
		t.Fatalf("SplitToken failed: %v", err)
	}
	if h != "aaa" || c != "bbb" || s != "ccc" {
		t.Errorf("SplitToken = %q %q %q", h, c, s)
	}

	for _, bad := range []string{"", "a.b", "a.b.c.d", "a..c", ".b.c", "a.b."} {
		if _, _, _, err := SplitToken(bad); err == nil {
			t.Errorf("SplitToken(%q) should fail", bad)
		}
	}
}

func TestDecodeSegment(t *testing.T) {
	payload := `{"alg":"RS256"}`

	unpadded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	got, err := DecodeSegment(unpadded)
	if err != nil {
		t.Fatalf("DecodeSegment(unpadded) failed: %v", err)
	}
	if string(got) != payload {
		t.Errorf("DecodeSegment = %q, want %q", got, payload)
	}

	padded := base64.URLEncoding.EncodeToString([]byte(payload))
	got, err = DecodeSegment(padded)
	if err != nil {
		t.Fatalf("DecodeSegment(padded) failed: %v", err)
	}
	if string(got) != payload {
		t.Errorf("DecodeSegment = %q, want %q", got, payload)
	}

	if _, err := DecodeSegment(""); err == nil {
		t.Error("DecodeSegment(\"\") should fail")
	}
	if _, err := DecodeSegment("!!not-base64!!"); err == nil {
		t.Error("DecodeSegment(invalid) should fail")
	}
}

func TestEncodeSegmentRoundTrip(t *testing.T) {
	in := []byte(`{"kid":"key-1"}`)
	out, err := DecodeSegment(EncodeSegment(in))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip = %q, want %q", out, in)
	}
}
