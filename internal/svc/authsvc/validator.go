package authsvc

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/catalog-manager/internal/domain"
)

// ValidateSessionToken validates a session token by:
// - Decoding the base64url-encoded token
// - Verifying the RSA-PSS signature using SHA256
// - Parsing the JSON payload into a SessionToken
// - Checking if the token has expired
// Returns the parsed SessionToken if valid.
// Returns domain.ErrInvalidSessionToken for any validation failure.
func ValidateSessionToken(ctx context.Context, tokenString string, publicKey *rsa.PublicKey) (domain.SessionToken, error) {
	tokenData, err := base64.URLEncoding.DecodeString(tokenString)
	if err != nil {
		return domain.SessionToken{}, errors.Join(domain.ErrInvalidSessionToken, fmt.Errorf("decode token: %w", err))
	}

	signatureStart := len(tokenData) - publicKey.Size()
	if signatureStart <= 0 {
		return domain.SessionToken{}, domain.ErrInvalidSessionToken
	}

	payload := tokenData[:signatureStart]
	signature := tokenData[signatureStart:]

	hashed := sha256.Sum256(payload)
	if err := rsa.VerifyPSS(publicKey, crypto.SHA256, hashed[:], signature, nil); err != nil {
		return domain.SessionToken{}, domain.ErrInvalidSessionToken
	}

	var token domain.SessionToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return domain.SessionToken{}, errors.Join(domain.ErrInvalidSessionToken, fmt.Errorf("unmarshal token: %w", err))
	}

	if token.ExpiresAt < time.Now().Unix() {
		return domain.SessionToken{}, domain.ErrInvalidSessionToken
	}

	return token, nil
}
