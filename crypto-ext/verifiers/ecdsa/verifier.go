/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/cfries/es256signature2020/crypto-ext/pubkey"
)

const p256KeySize = 32

// ErrInvalidSignature is returned when a well-formed key does not verify the signature.
var ErrInvalidSignature = errors.New("ecdsa: invalid signature")

// ErrInvalidPublicKey is returned when the public key cannot be used for ES256.
var ErrInvalidPublicKey = errors.New("ecdsa: invalid public key")

type ellipticCurve struct {
	curve   elliptic.Curve
	keySize int
	hash    crypto.Hash
}

// Verifier verifies elliptic curve signatures.
type Verifier struct {
	ec         ellipticCurve
	kmsKeyType []kms.KeyType
}

// SupportedKeyType checks if verifier supports given key.
func (sv *Verifier) SupportedKeyType(keyType kms.KeyType) bool {
	return slices.Contains(sv.kmsKeyType, keyType)
}

// ParseKey extracts the ECDSA public key from pubKey.
func (sv *Verifier) ParseKey(pubKey *pubkey.PublicKey) (*ecdsa.PublicKey, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidPublicKey)
	}

	if !sv.SupportedKeyType(pubKey.Type) {
		return nil, fmt.Errorf("%w: unsupported key type %s", ErrInvalidPublicKey, pubKey.Type)
	}

	var ecdsaPubKey *ecdsa.PublicKey

	switch {
	case pubKey.JWK != nil:
		switch k := pubKey.JWK.Key.(type) {
		case *ecdsa.PublicKey:
			ecdsaPubKey = k
		case *ecdsa.PrivateKey:
			ecdsaPubKey = &k.PublicKey
		default:
			return nil, fmt.Errorf("%w: JWK does not hold an EC key", ErrInvalidPublicKey)
		}
	case pubKey.BytesKey != nil:
		var err error

		ecdsaPubKey, err = sv.createECDSAPublicKey(pubKey.BytesKey.Bytes)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, pubkey.ErrNoKeyMaterial)
	}

	if ecdsaPubKey.Curve != sv.ec.curve {
		return nil, fmt.Errorf("%w: curve %s", ErrInvalidPublicKey, ecdsaPubKey.Curve.Params().Name)
	}

	return ecdsaPubKey, nil
}

// Verify verifies the signature.
func (sv *Verifier) Verify(signature, msg []byte, pubKey *pubkey.PublicKey) error {
	ecdsaPubKey, err := sv.ParseKey(pubKey)
	if err != nil {
		return err
	}

	ec := sv.ec

	if len(signature) < 2*ec.keySize {
		return fmt.Errorf("%w: size %d", ErrInvalidSignature, len(signature))
	}

	hasher := ec.hash.New()
	_, _ = hasher.Write(msg)
	hash := hasher.Sum(nil)

	r := big.NewInt(0).SetBytes(signature[:ec.keySize])
	s := big.NewInt(0).SetBytes(signature[ec.keySize:])

	// Anything longer than r||s is treated as ASN.1 DER.
	if len(signature) > 2*ec.keySize {
		var esig struct {
			R, S *big.Int
		}

		rest, err := asn1.Unmarshal(signature, &esig)
		if err != nil || len(rest) > 0 {
			return fmt.Errorf("%w: malformed DER", ErrInvalidSignature)
		}

		r = esig.R
		s = esig.S
	}

	if !ecdsa.Verify(ecdsaPubKey, hash, r, s) {
		return ErrInvalidSignature
	}

	return nil
}

func (sv *Verifier) createECDSAPublicKey(pubKeyBytes []byte) (*ecdsa.PublicKey, error) {
	curve := sv.ec.curve

	x, y := elliptic.Unmarshal(curve, pubKeyBytes) //nolint:staticcheck
	if x == nil {
		return nil, fmt.Errorf("%w: invalid public key bytes", ErrInvalidPublicKey)
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     x,
		Y:     y,
	}, nil
}

// NewES256 creates a new signature verifier that verifies a ECDSA P-256 signature
// taking public key bytes and JSON Web Key as input.
func NewES256() *Verifier {
	return &Verifier{
		ec: ellipticCurve{
			curve:   elliptic.P256(),
			keySize: p256KeySize,
			hash:    crypto.SHA256,
		},
		kmsKeyType: []kms.KeyType{kms.ECDSAP256TypeIEEEP1363, kms.ECDSAP256TypeDER},
	}
}
