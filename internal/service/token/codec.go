// Package token decodes compact three-segment credentials and mints them for
// development and tests. Signatures are never verified here: the authority
// that issued the token is the one that checks it.
package token

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/apperrors"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
)

const segmentsCount = 3 // header.payload.signature

// Padding is tolerated, some issuers keep it
var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts expiration claim from compact token
// Any structural problem returns error wrapping apperrors.ErrMalformedToken
func Decode(raw string) (models.Claim, error) {
	var claim models.Claim

	segments := strings.Split(raw, ".")
	if len(segments) != segmentsCount {
		return claim, fmt.Errorf("expected %d segments, got %d. Err: %w", segmentsCount, len(segments), apperrors.ErrMalformedToken)
	}

	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return claim, fmt.Errorf("error while decoding payload: %v. Err: %w", err, apperrors.ErrMalformedToken)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claim, fmt.Errorf("payload is not a json object: %v. Err: %w", err, apperrors.ErrMalformedToken)
	}

	exp, err := claims.GetExpirationTime()
	switch {
	case err != nil:
		return claim, fmt.Errorf("exp is not numeric: %v. Err: %w", err, apperrors.ErrMalformedToken)
	case exp == nil:
		return claim, fmt.Errorf("exp claim is missing. Err: %w", apperrors.ErrMalformedToken)
	}

	claim.ExpiresAt = exp.Unix()
	return claim, nil
}
