/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws provides a verifier capability for signatures made by the jws signer:
// data and signature are reassembled into a flattened JSON Web Signature with the
// signer's protected header and checked by go-jose.
package jws

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	gojose "github.com/go-jose/go-jose/v3"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/trustbloc/kms-go/doc/jose/jwk"

	jwssigner "github.com/cfries/es256signature2020/crypto-ext/signers/jws"
)

var logger = log.New("es256signature2020/jws-verifier")

// ErrInvalidKey is returned when the JWK does not hold a P-256 public key.
var ErrInvalidKey = errors.New("jws: JWK must hold an EC P-256 key")

// Verifier verifies detached ES256 signatures through go-jose.
type Verifier struct {
	keyID  string
	pubKey *ecdsa.PublicKey
}

// New creates a Verifier for the given key. Private JWKs are accepted, only the public half is used.
func New(keyID string, key *jwk.JWK) (*Verifier, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}

	var pub *ecdsa.PublicKey

	switch k := key.Key.(type) {
	case *ecdsa.PublicKey:
		pub = k
	case *ecdsa.PrivateKey:
		pub = &k.PublicKey
	default:
		return nil, ErrInvalidKey
	}

	if pub.Curve.Params().Name != "P-256" {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidKey, pub.Curve.Params().Name)
	}

	return &Verifier{keyID: keyID, pubKey: pub}, nil
}

type flattenedJWS struct {
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Verify implements api.Verifier. Any parse or verification failure yields false.
func (v *Verifier) Verify(data, signature []byte) (bool, error) {
	raw, err := json.Marshal(flattenedJWS{
		Protected: base64.RawURLEncoding.EncodeToString([]byte(jwssigner.ProtectedHeader)),
		Payload:   base64.RawURLEncoding.EncodeToString(data),
		Signature: base64.RawURLEncoding.EncodeToString(signature),
	})
	if err != nil {
		return false, err
	}

	obj, err := gojose.ParseSigned(string(raw))
	if err != nil {
		logger.Debugf("parse flattened JWS: %v", err)

		return false, nil
	}

	if _, err = obj.Verify(v.pubKey); err != nil {
		logger.Debugf("verify flattened JWS: %v", err)

		return false, nil
	}

	return true, nil
}

// KeyID implements api.Verifier.
func (v *Verifier) KeyID() string {
	return v.keyID
}
