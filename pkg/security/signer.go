package security

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

const signatureBytes = 8

var ErrInvalidKeySize = errors.New("invalid key size")

// Signer produces short keyed signatures for printed verification codes. The
// signature is a truncated keyed BLAKE2b-256 digest.
type Signer struct {
	key []byte
}

// NewSigner returns nil when key is empty so callers can treat signing as
// optional.
func NewSigner(key string) (*Signer, error) {
	if key == "" {
		return nil, nil
	}
	if len(key) > blake2b.Size {
		return nil, ErrInvalidKeySize
	}
	return &Signer{key: []byte(key)}, nil
}

func (s *Signer) Sign(payload string) (string, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return "", err
	}
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil)[:signatureBytes]), nil
}

func (s *Signer) Verify(payload, signature string) bool {
	want, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}
