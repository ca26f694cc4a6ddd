/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package lddocument signs JSON-LD documents with linked data proofs and verifies them.
package lddocument

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/trustbloc/did-go/doc/ld/processor"

	"github.com/cfries/es256signature2020/ld/proof"
	"github.com/cfries/es256signature2020/ld/purpose"
)

var logger = log.New("es256signature2020/lddocument")

// ErrCannotSign is returned by DocumentSigner.Sign when the suite has no signing capability.
var ErrCannotSign = errors.New("suite has no signing capability")

// SigningSuite encapsulates signature suite methods required for signing documents.
type SigningSuite interface {
	proof.SignatureSuite

	// CreateSignature will sign data and return signature.
	CreateSignature(data []byte) ([]byte, error)
	// CanSign reports whether CreateSignature can succeed.
	CanSign() bool
	// ProofType returns the proof type written into proofs.
	ProofType() string
	// VerificationMethodID returns the key id written into proofs.
	VerificationMethodID() string
}

// DocumentSigner implements signing of JSONLD documents.
type DocumentSigner struct {
	suite SigningSuite
}

// SigningContext holds signing options.
type SigningContext struct {
	Purpose            purpose.ProofPurpose // optional, assertionMethod by default
	VerificationMethod string               // optional, the suite key id by default
	Created            *time.Time           // optional
	Expires            *time.Time           // optional
	Nonce              string               // optional
}

// NewDocumentSigner returns new instance of document signer.
func NewDocumentSigner(suite SigningSuite) *DocumentSigner {
	return &DocumentSigner{suite: suite}
}

// Sign will sign JSON LD document. The proof is added to jsonLdObject, next to existing proofs.
func (ds *DocumentSigner) Sign(
	context *SigningContext,
	jsonLdObject map[string]interface{},
	opts ...processor.Opts,
) error {
	if !ds.suite.CanSign() {
		return ErrCannotSign
	}

	if context == nil {
		context = &SigningContext{}
	}

	vmID := context.VerificationMethod
	if vmID == "" {
		vmID = ds.suite.VerificationMethodID()
	}

	if vmID == "" {
		return errors.New("verification method is missing")
	}

	created := time.Now()
	if context.Created != nil {
		created = *context.Created
	}

	proofObject := map[string]interface{}{
		"type":               ds.suite.ProofType(),
		"created":            formatTime(created),
		"verificationMethod": vmID,
	}

	if context.Expires != nil {
		proofObject["expires"] = formatTime(*context.Expires)
	}

	if context.Nonce != "" {
		proofObject["nonce"] = context.Nonce
	}

	proofPurpose := context.Purpose
	if proofPurpose == nil {
		proofPurpose = purpose.NewAssertionProofPurpose()
	}

	proofPurpose.Update(proofObject)

	message, err := proof.CreateVerifyData(ds.suite, jsonLdObject, proofObject,
		append(opts, processor.WithValidateRDF())...)
	if err != nil {
		return fmt.Errorf("create verify data: %w", err)
	}

	s, err := ds.suite.CreateSignature(message)
	if err != nil {
		return fmt.Errorf("create signature: %w", err)
	}

	proofObject["proofValue"] = proof.EncodeProofValue(s)

	p, err := proof.NewProof(proofObject)
	if err != nil {
		return err
	}

	proof.AddProof(jsonLdObject, p)

	logger.Debugf("added %s proof made by %s", p.Type, vmID)

	return nil
}

// formatTime writes t the way proofs carry timestamps: UTC, second precision.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
