/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsa provides an ES256 (ECDSA P-256, SHA-256) signer.
package ecdsa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
)

const p256KeySize = 32

// ErrUnsupportedCurve is returned for private keys that are not on P-256.
var ErrUnsupportedCurve = errors.New("ecdsa: private key must be on curve P-256")

// Signer makes ES256 signatures.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	hash       crypto.Hash
	rand       io.Reader
	asn1       bool
}

// Opt configures a Signer.
type Opt func(s *Signer)

// WithASN1 makes the signer emit ASN.1 DER signatures instead of IEEE P1363 (r||s).
func WithASN1() Opt {
	return func(s *Signer) {
		s.asn1 = true
	}
}

// WithRandom overrides the entropy source used for the nonce.
func WithRandom(r io.Reader) Opt {
	return func(s *Signer) {
		s.rand = r
	}
}

// NewES256 creates a Signer for a P-256 private key.
func NewES256(privKey *ecdsa.PrivateKey, opts ...Opt) (*Signer, error) {
	if privKey == nil || privKey.Curve != elliptic.P256() {
		return nil, ErrUnsupportedCurve
	}

	s := &Signer{
		privateKey: privKey,
		hash:       crypto.SHA256,
		rand:       rand.Reader,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Sign signs a message.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	hasher := s.hash.New()
	_, _ = hasher.Write(msg)
	hashed := hasher.Sum(nil)

	if s.asn1 {
		return ecdsa.SignASN1(s.rand, s.privateKey, hashed)
	}

	r, sig, err := ecdsa.Sign(s.rand, s.privateKey, hashed)
	if err != nil {
		return nil, err
	}

	copyPadded := func(source []byte, size int) []byte {
		dest := make([]byte, size)
		copy(dest[size-len(source):], source)

		return dest
	}

	return append(copyPadded(r.Bytes(), p256KeySize), copyPadded(sig.Bytes(), p256KeySize)...), nil
}

// Alg returns the JOSE algorithm name.
func (s *Signer) Alg() string {
	return "ES256"
}

// PublicKey returns the public half of the signing key.
func (s *Signer) PublicKey() *ecdsa.PublicKey {
	return &s.privateKey.PublicKey
}
