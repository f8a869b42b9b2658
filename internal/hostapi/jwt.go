package hostapi

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeJWTPayload returns the JSON text of a token's payload segment, or ""
// when the token is malformed. Signatures are not checked.
func DecodeJWTPayload(token string) string {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 || parts[1] == "" {
		return ""
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		// Some issuers emit the standard alphabet.
		payload, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(parts[1], "="))
		if err != nil {
			return ""
		}
	}
	if !json.Valid(payload) {
		return ""
	}
	return string(payload)
}
