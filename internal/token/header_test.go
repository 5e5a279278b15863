package token

import (
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/wadahiro/weblogin/internal/protocol"
)

func encodeHeader(t *testing.T, raw string) string {
	t.Helper()
	return protocol.EncodeSegment([]byte(raw))
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Header
		wantErr bool
	}{
		{
			name: "valid header",
			raw:  `{"alg":"RS256","typ":"token_type","kid":"abc"}`,
			want: Header{Alg: "RS256", Typ: "token_type", Kid: "abc"},
		},
		{
			name:    "wrong algorithm",
			raw:     `{"alg":"HS256","typ":"token_type","kid":"abc"}`,
			wantErr: true,
		},
		{
			name:    "missing alg",
			raw:     `{"typ":"token_type","kid":"abc"}`,
			wantErr: true,
		},
		{
			name:    "empty typ",
			raw:     `{"alg":"RS256","typ":"","kid":"abc"}`,
			wantErr: true,
		},
		{
			name:    "empty kid",
			raw:     `{"alg":"RS256","typ":"token_type"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `I am definitely not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeader(encodeHeader(t, tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHeader failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseHeader = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseHeaderNotBase64(t *testing.T) {
	if _, err := ParseHeader("!!!"); err == nil {
		t.Error("ParseHeader(!!!) should fail")
	}
}

func TestHeaderEquality(t *testing.T) {
	a := Header{Alg: "RS256", Typ: "token_type", Kid: "abc"}
	b := Header{Alg: "RS256", Typ: "token_type", Kid: "abc"}
	c := Header{Alg: "RS256", Typ: "token_type", Kid: "def"}

	if a != b || !a.Equal(b) {
		t.Error("identical field tuples should compare equal")
	}
	if a == c || a.Equal(c) {
		t.Error("different kid should not compare equal")
	}
}

func TestHeaderEncodedStringRoundTrip(t *testing.T) {
	h := Header{Alg: "RS256", Typ: "token_type", Kid: "abc"}
	parsed, err := ParseHeader(h.EncodedString())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if parsed != h {
		t.Errorf("round trip = %+v, want %+v", parsed, h)
	}
}

func TestHeaderEnsureKey(t *testing.T) {
	set, err := jwk.Parse([]byte(`{"keys":[
		{"kty":"oct","kid":"top-key","alg":"RS256","k":"c2VjcmV0"},
		{"kty":"oct","kid":"other-key","alg":"HS256","k":"c2VjcmV0"},
		{"kty":"oct","kid":"no-alg-key","k":"c2VjcmV0"}
	]}`))
	if err != nil {
		t.Fatalf("jwk.Parse failed: %v", err)
	}

	tests := []struct {
		name    string
		kid     string
		wantErr bool
	}{
		{"matching key", "top-key", false},
		{"key without alg", "no-alg-key", false},
		{"unknown kid", "missing-key", true},
		{"algorithm mismatch", "other-key", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header{Alg: "RS256", Typ: "token_type", Kid: tt.kid}
			err := h.EnsureKey(set)
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("EnsureKey failed: %v", err)
			}
		})
	}

	h := Header{Alg: "RS256", Typ: "token_type", Kid: "top-key"}
	if err := h.EnsureKey(nil); err == nil {
		t.Error("EnsureKey(nil) should fail")
	}
}
