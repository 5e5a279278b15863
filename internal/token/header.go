package token

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/wadahiro/weblogin/internal/protocol"
)

// ExpectedAlgorithm is the only signing algorithm accepted for identity
// tokens issued through the dialog.
const ExpectedAlgorithm = "RS256"

// Header is the decoded JWT-style header of a signed identity token. It is
// an immutable value: two headers are equal (==) iff their field tuples are.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Kid string `json:"kid"`
}

// ParseHeader decodes and validates a base64url-encoded identity token
// header. The algorithm must be ExpectedAlgorithm and typ/kid must be
// non-empty.
func ParseHeader(encoded string) (Header, error) {
	data, err := protocol.DecodeSegment(encoded)
	if err != nil {
		return Header{}, fmt.Errorf("parse token header: %w", err)
	}

	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return Header{}, fmt.Errorf("parse token header: %w", err)
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h Header) validate() error {
	if h.Alg != ExpectedAlgorithm {
		return fmt.Errorf("token header alg %q, want %s", h.Alg, ExpectedAlgorithm)
	}
	if h.Typ == "" {
		return fmt.Errorf("token header typ is empty")
	}
	if h.Kid == "" {
		return fmt.Errorf("token header kid is empty")
	}
	return nil
}

// Equal reports field-tuple equality with another header.
func (h Header) Equal(o Header) bool {
	return h == o
}

// EncodedString returns the canonical base64url JSON encoding of the header.
func (h Header) EncodedString() string {
	b, _ := json.Marshal(h)
	return protocol.EncodeSegment(b)
}

// EnsureKey checks that the header's key id resolves in the given key set
// and that the key's advertised algorithm, when present, matches the header.
func (h Header) EnsureKey(set jwk.Set) error {
	if set == nil {
		return fmt.Errorf("no key set available")
	}
	key, ok := set.LookupKeyID(h.Kid)
	if !ok {
		return fmt.Errorf("key %q not found in key set", h.Kid)
	}
	if alg := key.Algorithm(); alg != nil && alg.String() != "" && alg.String() != h.Alg {
		return fmt.Errorf("key %q algorithm %s does not match header alg %s", h.Kid, alg.String(), h.Alg)
	}
	return nil
}
