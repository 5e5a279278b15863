package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// IsJWT returns true if the string has the 3-part JWT structure.
func IsJWT(s string) bool {
	return strings.Count(s, ".") == 2
}

// SplitToken splits a JWT-style token into its header, claims, and signature
// segments. All three segments must be non-empty.
func SplitToken(raw string) (header, claims, signature string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("token has %d segments, want 3", len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("token segment %d is empty", i)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// DecodeSegment decodes a base64url token segment. Both padded and unpadded
// encodings are accepted; dialogs are not consistent about padding.
func DecodeSegment(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty segment")
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("decode segment: %w", err)
	}
	return b, nil
}

// EncodeSegment encodes bytes as an unpadded base64url token segment.
func EncodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
