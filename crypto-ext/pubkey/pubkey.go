/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pubkey holds the public key shape handed to signature verifiers.
package pubkey

import (
	"crypto/ecdsa"
	"errors"

	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/spi/kms"
)

// ErrNoKeyMaterial is returned when a PublicKey has neither JWK nor raw bytes.
var ErrNoKeyMaterial = errors.New("public key has no key material")

// BytesKey contains bytes of public key.
type BytesKey struct {
	Bytes []byte
}

// PublicKey contains a result of public key resolution.
type PublicKey struct {
	Type kms.KeyType

	BytesKey *BytesKey
	JWK      *jwk.JWK
}

// FromJWK wraps a P-256 JSON Web Key. Private JWKs are reduced to their public half.
func FromJWK(j *jwk.JWK) (*PublicKey, error) {
	if j == nil {
		return nil, ErrNoKeyMaterial
	}

	pub := *j

	if priv, ok := j.Key.(*ecdsa.PrivateKey); ok {
		pub.Key = &priv.PublicKey
	}

	return &PublicKey{
		Type: kms.ECDSAP256TypeIEEEP1363,
		JWK:  &pub,
	}, nil
}
