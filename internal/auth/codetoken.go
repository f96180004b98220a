package auth

import (
	"errors"

	"shiftwork_backend/internal/config"
	"shiftwork_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedCodePayload = errors.New("malformed code payload")

// CodeClaims is the signed content of a scannable code. The QR payload
// is the compact JWT encoding of these claims; a bad signature or an
// undecodable payload is a MalformedCode, checked before any storage
// lookup.
type CodeClaims struct {
	CodeID    string          `json:"code_id"`
	SubjectID string          `json:"subject_id"`
	Kind      models.CodeKind `json:"kind"`
	jwt.RegisteredClaims
}

// SignCodePayload produces the scannable payload for a stored code.
// Expiry lives on the ScannableCode row, not in the token, so a code
// can be deactivated server-side without reissuing.
func SignCodePayload(codeID, subjectID string, kind models.CodeKind) (string, error) {
	claims := CodeClaims{
		CodeID:    codeID,
		SubjectID: subjectID,
		Kind:      kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetConfig().Trust.CodeSecret))
}

// ParseCodePayload decodes and verifies a scanned payload.
func ParseCodePayload(payload string) (*CodeClaims, error) {
	claims := &CodeClaims{}

	token, err := jwt.ParseWithClaims(payload, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedCodePayload
		}
		return []byte(config.GetConfig().Trust.CodeSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrMalformedCodePayload
	}

	if claims.CodeID == "" || claims.SubjectID == "" {
		return nil, ErrMalformedCodePayload
	}
	if claims.Kind != models.CodeKindVenue && claims.Kind != models.CodeKindWorker {
		return nil, ErrMalformedCodePayload
	}

	return claims, nil
}
