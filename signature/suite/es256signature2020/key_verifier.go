/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package es256signature2020

import (
	"errors"
	"fmt"

	"github.com/trustbloc/kms-go/doc/jose/jwk"

	"github.com/cfries/es256signature2020/crypto-ext/pubkey"
	ecdsaverifier "github.com/cfries/es256signature2020/crypto-ext/verifiers/ecdsa"
	"github.com/cfries/es256signature2020/keypair"
)

// KeyVerifier is a verification capability derived from a public JWK.
type KeyVerifier struct {
	keyID     string
	publicKey *pubkey.PublicKey
	verifier  *ecdsaverifier.Verifier
}

// NewKeyVerifier derives a verifier from an EC P-256 JWK. Private JWKs are reduced to their public half.
func NewKeyVerifier(keyID string, key *jwk.JWK) (*KeyVerifier, error) {
	if err := (&keypair.KeyDescriptor{PublicKeyJWK: key}).Validate(); err != nil {
		return nil, err
	}

	pub, err := pubkey.FromJWK(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	verifier := ecdsaverifier.NewES256()

	if _, err = verifier.ParseKey(pub); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return &KeyVerifier{keyID: keyID, publicKey: pub, verifier: verifier}, nil
}

// Verify implements api.Verifier.
func (v *KeyVerifier) Verify(data, signature []byte) (bool, error) {
	err := v.verifier.Verify(signature, data, v.publicKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ecdsaverifier.ErrInvalidSignature):
		logger.Debugf("signature rejected for %s: %v", v.keyID, err)

		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}
}

// KeyID implements api.Verifier.
func (v *KeyVerifier) KeyID() string {
	return v.keyID
}
