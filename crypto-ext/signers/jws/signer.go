/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws provides a signing capability that signs data as the payload of a
// detached ES256 JSON Web Signature.
package jws

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	gojose "github.com/go-jose/go-jose/v3"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
)

// ProtectedHeader is the only protected header the signer emits. Verifiers rebuild the
// JWS signing input from it.
const ProtectedHeader = `{"alg":"ES256"}`

// ErrInvalidKey is returned when the JWK does not hold a P-256 private key.
var ErrInvalidKey = errors.New("jws: JWK must hold an EC P-256 private key")

// Signer signs BASE64URL(ProtectedHeader) || '.' || BASE64URL(data) and returns the raw
// IEEE P1363 signature of the resulting JWS.
type Signer struct {
	keyID  string
	signer gojose.Signer
}

// New creates a Signer for a private P-256 JWK.
func New(keyID string, key *jwk.JWK) (*Signer, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}

	priv, ok := key.Key.(*ecdsa.PrivateKey)
	if !ok || priv.Curve != elliptic.P256() {
		return nil, ErrInvalidKey
	}

	s, err := gojose.NewSigner(gojose.SigningKey{Algorithm: gojose.ES256, Key: priv}, nil)
	if err != nil {
		return nil, fmt.Errorf("create jose signer: %w", err)
	}

	return &Signer{keyID: keyID, signer: s}, nil
}

// Sign implements api.Signer.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	obj, err := s.signer.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("sign jws: %w", err)
	}

	compact, err := obj.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("serialize jws: %w", err)
	}

	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("jws: unexpected compact serialization with %d parts", len(parts))
	}

	if parts[0] != base64.RawURLEncoding.EncodeToString([]byte(ProtectedHeader)) {
		return nil, fmt.Errorf("jws: unexpected protected header %q", parts[0])
	}

	return base64.RawURLEncoding.DecodeString(parts[2])
}

// KeyID implements api.Signer.
func (s *Signer) KeyID() string {
	return s.keyID
}

// Alg returns the JOSE algorithm name.
func (s *Signer) Alg() string {
	return string(gojose.ES256)
}
