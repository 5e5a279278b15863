package token

import (
	"fmt"

	"github.com/wadahiro/weblogin/internal/protocol"
)

// AuthenticationToken is a signed identity token received from the dialog.
// Construction validates structure, header, claims, and the nonce binding;
// signature verification against the vendor's key set is a separate step.
type AuthenticationToken struct {
	Raw           string
	Header        Header
	Claims        Claims
	Signature     string
	ExpectedNonce string
}

// NewAuthenticationToken parses a raw identity token and binds it to the
// nonce sent in the dialog request.
func NewAuthenticationToken(raw, expectedNonce string) (*AuthenticationToken, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty identity token")
	}
	if expectedNonce == "" {
		return nil, fmt.Errorf("empty nonce")
	}

	headerSeg, claimsSeg, signature, err := protocol.SplitToken(raw)
	if err != nil {
		return nil, fmt.Errorf("identity token: %w", err)
	}

	header, err := ParseHeader(headerSeg)
	if err != nil {
		return nil, fmt.Errorf("identity token: %w", err)
	}

	claims, err := ParseClaims(claimsSeg)
	if err != nil {
		return nil, fmt.Errorf("identity token: %w", err)
	}
	if claims.Nonce != expectedNonce {
		return nil, fmt.Errorf("identity token: nonce does not match request")
	}

	return &AuthenticationToken{
		Raw:           raw,
		Header:        header,
		Claims:        claims,
		Signature:     signature,
		ExpectedNonce: expectedNonce,
	}, nil
}
