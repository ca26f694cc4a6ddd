/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package api defines the signing and verification capabilities a signature suite can be bound to.
package api

// Signer is a signing capability bound to a single key.
type Signer interface {
	// Sign will sign data and return the raw signature.
	Sign(data []byte) ([]byte, error)
	// KeyID returns the id of the verification method matching the signing key.
	KeyID() string
}

// Verifier is a verification capability bound to a single key.
type Verifier interface {
	// Verify reports whether signature is valid for data. An invalid signature is
	// reported as false, errors are reserved for unusable key material.
	Verify(data, signature []byte) (bool, error)
	// KeyID returns the id of the verification method this verifier checks against.
	KeyID() string
}

// SignerFunc adapts a function to the signing part of Signer.
type SignerFunc func(data []byte) ([]byte, error)

// VerifierFunc adapts a function to the verification part of Verifier.
type VerifierFunc func(data, signature []byte) (bool, error)

type funcSigner struct {
	keyID string
	sign  SignerFunc
}

func (s *funcSigner) Sign(data []byte) ([]byte, error) {
	return s.sign(data)
}

func (s *funcSigner) KeyID() string {
	return s.keyID
}

type funcVerifier struct {
	keyID  string
	verify VerifierFunc
}

func (v *funcVerifier) Verify(data, signature []byte) (bool, error) {
	return v.verify(data, signature)
}

func (v *funcVerifier) KeyID() string {
	return v.keyID
}

// NewSigner binds sign to keyID.
func NewSigner(keyID string, sign SignerFunc) Signer {
	return &funcSigner{keyID: keyID, sign: sign}
}

// NewVerifier binds verify to keyID.
func NewVerifier(keyID string, verify VerifierFunc) Verifier {
	return &funcVerifier{keyID: keyID, verify: verify}
}
