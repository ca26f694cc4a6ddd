/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package es256signature2020 implements the ES256Signature2020 linked data proof suite.
// Proofs are of type EcdsaSecp256r1Signature2019 and reference JsonWebKey2020 verification
// methods holding EC P-256 keys.
// It uses the RDF Dataset Normalization Algorithm to transform the input document into its
// canonical form, SHA-256 as the message digest algorithm, and ES256 (ECDSA P-256, IEEE P1363
// r||s) for signatures.
package es256signature2020

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/trustbloc/did-go/doc/ld/processor"
	"github.com/trustbloc/kms-go/doc/jose/jwk"

	ecdsasigner "github.com/cfries/es256signature2020/crypto-ext/signers/ecdsa"
	"github.com/cfries/es256signature2020/keypair"
	"github.com/cfries/es256signature2020/signature/api"
)

const (
	// SuiteName is the name the suite is registered under.
	SuiteName = "ES256Signature2020"
	// ProofType is the proof "type" produced and accepted by the suite.
	ProofType = "EcdsaSecp256r1Signature2019"
	// VerificationMethodType is the verification method type the suite works with.
	VerificationMethodType = keypair.KeyType
	// JWTAlg is the JOSE algorithm of produced signatures.
	JWTAlg = "ES256"
	// JWKKeyType is the accepted JWK "kty".
	JWKKeyType = keypair.JWKKeyType
	// JWKCurve is the accepted JWK "crv".
	JWKCurve = keypair.JWKCurve

	rdfDataSetAlg = "URDNA2015"
)

var logger = log.New("es256signature2020/suite")

var (
	// ErrSigningUnavailable is returned by CreateSignature when neither a private key nor a signer is configured.
	ErrSigningUnavailable = errors.New("signing unavailable: no private key or signer configured")
	// ErrVerificationUnavailable is returned when neither a key nor a verifier is available.
	ErrVerificationUnavailable = errors.New("verification unavailable: no key or verifier configured")
	// ErrConflictingOptions is returned when a key and an explicit capability compete for the same role.
	ErrConflictingOptions = errors.New("conflicting suite options")
	// ErrKeyMaterialInvalid is returned for key material that is not EC/P-256.
	ErrKeyMaterialInvalid = keypair.ErrKeyMaterialInvalid
)

// Suite implements the ES256Signature2020 signature suite. It is immutable after New.
type Suite struct {
	signer          api.Signer
	verifier        api.Verifier
	jsonldProcessor *processor.Processor
}

type suiteOpts struct {
	key      *keypair.KeyDescriptor
	signer   api.Signer
	verifier api.Verifier
}

// Opt is the Suite option.
type Opt func(opts *suiteOpts)

// WithKey binds the suite to a key. Private material enables signing, public material
// (given or derived from the private key) enables verification.
func WithKey(key *keypair.KeyDescriptor) Opt {
	return func(opts *suiteOpts) {
		opts.key = key
	}
}

// WithSigner defines an explicit signing capability.
func WithSigner(s api.Signer) Opt {
	return func(opts *suiteOpts) {
		opts.signer = s
	}
}

// WithVerifier defines an explicit verification capability.
func WithVerifier(v api.Verifier) Opt {
	return func(opts *suiteOpts) {
		opts.verifier = v
	}
}

// New creates an instance of the suite.
func New(opts ...Opt) (*Suite, error) {
	o := &suiteOpts{}

	for _, opt := range opts {
		opt(o)
	}

	s := &Suite{
		signer:          o.signer,
		verifier:        o.verifier,
		jsonldProcessor: processor.NewProcessor(rdfDataSetAlg),
	}

	if o.key == nil {
		return s, nil
	}

	if err := o.key.Validate(); err != nil {
		return nil, err
	}

	if o.key.HasPrivateKey() && o.signer != nil {
		return nil, fmt.Errorf("%w: key with private material and signer", ErrConflictingOptions)
	}

	if o.verifier != nil {
		return nil, fmt.Errorf("%w: key and verifier", ErrConflictingOptions)
	}

	if o.key.HasPrivateKey() {
		signer, err := newKeySigner(o.key)
		if err != nil {
			return nil, err
		}

		s.signer = signer
	}

	pub, err := o.key.PublicJWK()
	if err != nil {
		return nil, err
	}

	verifier, err := NewKeyVerifier(o.key.ID, pub)
	if err != nil {
		return nil, err
	}

	s.verifier = verifier

	return s, nil
}

// CreateSignature signs data with the configured signer or the one derived from the private key.
func (s *Suite) CreateSignature(data []byte) ([]byte, error) {
	if s.signer == nil {
		return nil, ErrSigningUnavailable
	}

	return s.signer.Sign(data)
}

// VerifySignature checks signature over data with the configured verifier or the one derived
// from the public key. An invalid signature yields false without an error.
func (s *Suite) VerifySignature(data, signature []byte) (bool, error) {
	if s.verifier == nil {
		return false, ErrVerificationUnavailable
	}

	return s.verifier.Verify(data, signature)
}

// VerifyProofSignature verifies a proof signature made by the verification method vmID.
// The configured verifier takes precedence; it must be bound to vmID when it names a key.
// Without one, a verifier is derived from key, the JWK resolved for vmID.
func (s *Suite) VerifyProofSignature(vmID string, key *jwk.JWK, data, signature []byte) (bool, error) {
	if s.verifier != nil {
		if keyID := s.verifier.KeyID(); keyID != "" && keyID != vmID {
			logger.Debugf("verifier is bound to %s, proof references %s", keyID, vmID)

			return false, nil
		}

		return s.verifier.Verify(data, signature)
	}

	if key == nil {
		return false, ErrVerificationUnavailable
	}

	verifier, err := NewKeyVerifier(vmID, key)
	if err != nil {
		return false, err
	}

	return verifier.Verify(data, signature)
}

// VerificationMethodID returns the key id written into proof.verificationMethod.
func (s *Suite) VerificationMethodID() string {
	if s.signer != nil {
		return s.signer.KeyID()
	}

	if s.verifier != nil {
		return s.verifier.KeyID()
	}

	return ""
}

// CanSign reports whether a signing capability is configured.
func (s *Suite) CanSign() bool {
	return s.signer != nil
}

// ProofType returns the proof type produced by the suite.
func (s *Suite) ProofType() string {
	return ProofType
}

// VerificationMethodType returns the type of verification methods the suite works with.
func (s *Suite) VerificationMethodType() string {
	return VerificationMethodType
}

// Accept will accept only EcdsaSecp256r1Signature2019 proofs.
func (s *Suite) Accept(t string) bool {
	return t == ProofType
}

// GetCanonicalDocument will return normalized/canonical version of the document.
func (s *Suite) GetCanonicalDocument(doc map[string]interface{}, opts ...processor.Opts) ([]byte, error) {
	return s.jsonldProcessor.GetCanonicalDocument(doc, opts...)
}

// GetDigest returns document digest.
func (s *Suite) GetDigest(doc []byte) []byte {
	digest := sha256.Sum256(doc)

	return digest[:]
}

func newKeySigner(key *keypair.KeyDescriptor) (api.Signer, error) {
	priv, err := key.PrivateKey()
	if err != nil {
		return nil, err
	}

	signer, err := ecdsasigner.NewES256(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return api.NewSigner(key.ID, signer.Sign), nil
}
