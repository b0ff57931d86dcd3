// Package ussd implements the wire protocol of the simulated USSD aggregator:
// the request/response envelopes, the HTTP client that exchanges one turn with
// a target endpoint, and the normalizer that maps a raw reply into a
// renderable shape.
package ussd

import (
	"encoding/json"
	"strings"
)

// Network operators accepted by the aggregator.
const (
	NetworkMTN        = "MTN"
	NetworkVodafone   = "Vodafone"
	NetworkAirtelTigo = "AirtelTigo"
)

// Networks lists the supported operators.
var Networks = []string{NetworkMTN, NetworkVodafone, NetworkAirtelTigo}

// IsValidNetwork reports whether network is one of the supported operators.
func IsValidNetwork(network string) bool {
	for _, n := range Networks {
		if n == network {
			return true
		}
	}
	return false
}

// Actions a response can carry. Matched case-insensitively on the wire.
const (
	ActionPrompt = "prompt"
	ActionMenu   = "menu"
	ActionEnd    = "end"
)

// Request is one outgoing USSD turn.
type Request struct {
	Msisdn        string `json:"msisdn"`
	Msg           string `json:"msg"`
	Network       string `json:"network"`
	UserSessionID string `json:"UserSessionId"`
}

// RootRequest is the envelope posted to the target endpoint.
type RootRequest struct {
	USSDReq Request `json:"USSDReq"`
}

// Menus is the reply's option field. Endpoints are inconsistent about its
// encoding: some send a JSON array of strings, others a plain string, others
// a string that is itself a stringified array. Decoding keeps both shapes;
// classification happens in the normalizer.
type Menus struct {
	// Items is set when the wire value was a real JSON array.
	Items []string
	// Text is set when the wire value was a string (or anything else,
	// serialized to its raw JSON form).
	Text string
	// IsList reports which of the two fields is authoritative.
	IsList bool
}

// UnmarshalJSON accepts a JSON array of strings, a JSON string, or any other
// value (kept as its raw text so the fallback rendering can show it).
func (m *Menus) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = Menus{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*m = Menus{Items: items, IsList: true}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = Menus{Text: text}
		return nil
	}

	// Unexpected shape (number, object, mixed array). Keep the raw JSON so
	// the fallback rendering has something debug-readable to show.
	*m = Menus{Text: trimmed}
	return nil
}

// MarshalJSON round-trips the decoded value.
func (m Menus) MarshalJSON() ([]byte, error) {
	if m.IsList {
		return json.Marshal(m.Items)
	}
	return json.Marshal(m.Text)
}

// Response is one reply turn from the target endpoint.
type Response struct {
	Action string `json:"action"`
	Menus  Menus  `json:"menus"`
	Title  string `json:"title"`
	Key    string `json:"key"`
}

// RootResponse is the envelope the target endpoint answers with.
type RootResponse struct {
	USSDResp Response `json:"USSDResp"`
}

// IsDial reports whether input starts a fresh USSD dialog. Dialing a
// short-code (leading *) always opens a new session, like a real phone.
func IsDial(input string) bool {
	return strings.HasPrefix(input, "*")
}
