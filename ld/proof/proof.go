/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof models linked data proofs whose proofValue is a multibase (base58-btc) string.
package proof

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
	afgotime "github.com/trustbloc/did-go/doc/util/time"
)

const (
	// jsonldType is key for proof type.
	jsonldType = "type"
	// jsonldCreated is key for time proof created.
	jsonldCreated = "created"
	// jsonldExpires is key for time proof expires.
	jsonldExpires = "expires"
	// jsonldDomain is key for domain name.
	jsonldDomain = "domain"
	// jsonldNonce is key for nonce.
	jsonldNonce = "nonce"
	// jsonldProofValue is key for proof value.
	jsonldProofValue = "proofValue"
	// jsonldProofPurpose is a purpose of proof.
	jsonldProofPurpose = "proofPurpose"
	// jsonldVerificationMethod is a key for verification method.
	jsonldVerificationMethod = "verificationMethod"
	// jsonldChallenge is a key for challenge.
	jsonldChallenge = "challenge"
	// jsonldJWS is key for a JWS proof, never produced here but dropped from proof options.
	jsonldJWS = "jws"
	// jsonldSignatureValue is the legacy signature key, dropped from proof options.
	jsonldSignatureValue = "signatureValue"
)

var (
	// ErrUnsupportedEncoding is returned when proofValue is not multibase base58-btc.
	ErrUnsupportedEncoding = errors.New("proofValue must be multibase base58-btc encoded")
	// ErrSignatureNotDefined is returned when a proof carries no proofValue.
	ErrSignatureNotDefined = errors.New("signature is not defined")
)

// Proof is a linked data proof attached to a JSON-LD document.
type Proof struct {
	Type               string
	Created            *afgotime.TimeWrapper
	Expires            *afgotime.TimeWrapper
	VerificationMethod string
	ProofPurpose       string
	ProofValue         []byte
	Domain             string
	Challenge          string
	Nonce              string
}

// NewProof creates new proof.
func NewProof(emap map[string]interface{}) (*Proof, error) {
	created, err := parseTime(emap[jsonldCreated])
	if err != nil {
		return nil, fmt.Errorf("parse created: %w", err)
	}

	expires, err := parseTime(emap[jsonldExpires])
	if err != nil {
		return nil, fmt.Errorf("parse expires: %w", err)
	}

	raw, ok := emap[jsonldProofValue]
	if !ok {
		return nil, ErrSignatureNotDefined
	}

	proofValue, err := DecodeProofValue(stringEntry(raw))
	if err != nil {
		return nil, err
	}

	if len(proofValue) == 0 {
		return nil, ErrSignatureNotDefined
	}

	return &Proof{
		Type:               stringEntry(emap[jsonldType]),
		Created:            created,
		Expires:            expires,
		VerificationMethod: stringEntry(emap[jsonldVerificationMethod]),
		ProofPurpose:       stringEntry(emap[jsonldProofPurpose]),
		ProofValue:         proofValue,
		Domain:             stringEntry(emap[jsonldDomain]),
		Challenge:          stringEntry(emap[jsonldChallenge]),
		Nonce:              stringEntry(emap[jsonldNonce]),
	}, nil
}

// JSONLdObject returns map that represents JSON LD Object.
func (p *Proof) JSONLdObject() map[string]interface{} {
	emap := make(map[string]interface{})
	emap[jsonldType] = p.Type

	if p.Created != nil {
		emap[jsonldCreated] = p.Created.FormatToString()
	}

	if p.Expires != nil {
		emap[jsonldExpires] = p.Expires.FormatToString()
	}

	if p.VerificationMethod != "" {
		emap[jsonldVerificationMethod] = p.VerificationMethod
	}

	if p.ProofPurpose != "" {
		emap[jsonldProofPurpose] = p.ProofPurpose
	}

	if len(p.ProofValue) > 0 {
		emap[jsonldProofValue] = EncodeProofValue(p.ProofValue)
	}

	if p.Domain != "" {
		emap[jsonldDomain] = p.Domain
	}

	if p.Challenge != "" {
		emap[jsonldChallenge] = p.Challenge
	}

	if p.Nonce != "" {
		emap[jsonldNonce] = p.Nonce
	}

	return emap
}

// PublicKeyID provides ID of public key to be used to independently verify the proof.
func (p *Proof) PublicKeyID() (string, error) {
	if p.VerificationMethod == "" {
		return "", errors.New("no public key ID")
	}

	return p.VerificationMethod, nil
}

// EncodeProofValue encodes a signature as a multibase base58-btc string ("z" prefix).
func EncodeProofValue(proofValue []byte) string {
	encoded, _ := multibase.Encode(multibase.Base58BTC, proofValue) //nolint:errcheck

	return encoded
}

// DecodeProofValue decodes a multibase base58-btc proofValue.
func DecodeProofValue(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrSignatureNotDefined
	}

	enc, value, err := multibase.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}

	if enc != multibase.Base58BTC {
		return nil, fmt.Errorf("%w: got prefix %q", ErrUnsupportedEncoding, s[:1])
	}

	return value, nil
}

func parseTime(entry interface{}) (*afgotime.TimeWrapper, error) {
	s := stringEntry(entry)
	if s == "" {
		return nil, nil //nolint:nilnil
	}

	return afgotime.ParseTimeWrapper(s)
}

func stringEntry(entry interface{}) string {
	if strVal, ok := entry.(string); ok {
		return strVal
	}

	return ""
}
