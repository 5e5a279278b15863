package protocol

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// RandomHex generates a hex-encoded random string of n bytes.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ClientState is the opaque state carried through the dialog round trip.
// The auth id ties a redirect back to the request that produced it.
type ClientState struct {
	AuthID string `json:"0_auth_logger_id"`
	Method string `json:"3_method"`
}

// EncodeClientState encodes the state parameter value.
func EncodeClientState(authID, method string) string {
	b, _ := json.Marshal(ClientState{AuthID: authID, Method: method})
	return string(b)
}

// DecodeClientState decodes a state parameter value produced by
// EncodeClientState.
func DecodeClientState(s string) (ClientState, error) {
	var cs ClientState
	if err := json.Unmarshal([]byte(s), &cs); err != nil {
		return ClientState{}, fmt.Errorf("decode client state: %w", err)
	}
	if cs.AuthID == "" {
		return ClientState{}, fmt.Errorf("client state has no auth id")
	}
	return cs, nil
}

// EncodeE2E encodes the e2e timing parameter: a JSON object recording when
// the dialog request was initiated, in milliseconds.
func EncodeE2E(start time.Time) string {
	b, _ := json.Marshal(map[string]int64{"init": start.UnixMilli()})
	return string(b)
}

// MillisString formats a timestamp as a decimal millisecond string, the form
// the dialog expects for the cbt parameter.
func MillisString(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
