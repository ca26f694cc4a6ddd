/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package lddocument

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/trustbloc/did-go/doc/ld/processor"
	"github.com/trustbloc/kms-go/doc/jose/jwk"

	"github.com/cfries/es256signature2020/ld/proof"
	"github.com/cfries/es256signature2020/ld/purpose"
	jsonutil "github.com/cfries/es256signature2020/util/json"
	"github.com/cfries/es256signature2020/vermethod"
)

var (
	// ErrNoMatchingProofs is returned when no proof has the expected proof purpose.
	ErrNoMatchingProofs = errors.New("no matching proofs found")
	// ErrUnsupportedProofType is returned when no suite accepts the proof type.
	ErrUnsupportedProofType = errors.New("unsupported proof type")
	// ErrVerificationMethodType is returned when the verification method type does not fit the suite.
	ErrVerificationMethodType = errors.New("unsupported verification method type")
	// ErrIssuerMismatch is returned when the verification method is not controlled by the expected issuer.
	ErrIssuerMismatch = errors.New("verification method is not controlled by the issuer")
	// ErrInvalidSignature is returned when the proof signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
)

// nolint: gochecknoglobals
var possibleIssuerPath = []string{
	"issuer.id",
	"issuer",
	"holder.id",
	"holder",
}

// VerificationSuite encapsulates signature suite methods required for verifying documents.
type VerificationSuite interface {
	proof.SignatureSuite

	// Accept reports whether the suite handles proofType.
	Accept(proofType string) bool
	// VerificationMethodType returns the verification method type the suite works with.
	VerificationMethodType() string
	// VerifyProofSignature checks signature over data made by the verification method vmID
	// whose resolved key is key. An invalid signature yields false.
	VerifyProofSignature(vmID string, key *jwk.JWK, data, signature []byte) (bool, error)
}

type verificationMethodResolver interface {
	ResolveVerificationMethod(verificationMethod string) (*vermethod.VerificationMethod, error)
}

// ProofResult is the outcome of checking a single proof.
type ProofResult struct {
	Proof              map[string]interface{}
	VerificationMethod string
	Verified           bool
	Error              error
}

// Result is the outcome of checking document proofs.
type Result struct {
	Verified bool
	Results  []ProofResult
	Error    error
}

// DocumentVerifier implements JSON LD document proof verification.
type DocumentVerifier struct {
	suites         []VerificationSuite
	resolver       verificationMethodResolver
	purpose        purpose.ProofPurpose
	expectedIssuer string
	issuerFromDoc  bool
}

// VerifierOpt configures DocumentVerifier.
type VerifierOpt func(dv *DocumentVerifier)

// WithPurpose sets the expected proof purpose. Defaults to assertionMethod.
func WithPurpose(p purpose.ProofPurpose) VerifierOpt {
	return func(dv *DocumentVerifier) {
		dv.purpose = p
	}
}

// WithExpectedIssuer requires verification methods to be controlled by issuer.
func WithExpectedIssuer(issuer string) VerifierOpt {
	return func(dv *DocumentVerifier) {
		dv.expectedIssuer = issuer
	}
}

// WithIssuerFromDocument requires verification methods to be controlled by the issuer (or holder)
// named in the document itself.
func WithIssuerFromDocument() VerifierOpt {
	return func(dv *DocumentVerifier) {
		dv.issuerFromDoc = true
	}
}

// NewDocumentVerifier returns new instance of document verifier.
func NewDocumentVerifier(resolver verificationMethodResolver, suites []VerificationSuite,
	opts ...VerifierOpt) *DocumentVerifier {
	dv := &DocumentVerifier{
		suites:   suites,
		resolver: resolver,
		purpose:  purpose.NewAssertionProofPurpose(),
	}

	for _, opt := range opts {
		opt(dv)
	}

	return dv
}

// Verify will verify document proofs. Failed proofs are reported in the result;
// an error is returned only when jsonLdDoc is not a JSON object.
func (dv *DocumentVerifier) Verify(jsonLdDoc []byte, opts ...processor.Opts) (*Result, error) {
	jsonLdObject, err := jsonutil.ToMap(jsonLdDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal json ld document: %w", err)
	}

	return dv.verify(jsonLdObject, jsonLdDoc, opts)
}

// VerifyObject will verify document proofs for JSON LD object.
func (dv *DocumentVerifier) VerifyObject(jsonLdObject map[string]interface{},
	opts ...processor.Opts) (*Result, error) {
	if jsonLdObject == nil {
		return nil, errors.New("json ld document is missing")
	}

	var raw []byte

	if dv.issuerFromDoc {
		var err error

		raw, err = json.Marshal(jsonLdObject)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json ld document: %w", err)
		}
	}

	return dv.verify(jsonLdObject, raw, opts)
}

func (dv *DocumentVerifier) verify(jsonLdObject map[string]interface{}, raw []byte,
	opts []processor.Opts) (*Result, error) {
	proofObjects, err := proof.GetProofObjects(jsonLdObject)
	if err != nil {
		return &Result{Error: err}, nil
	}

	matching := lo.Filter(proofObjects, func(p map[string]interface{}, _ int) bool {
		return p["proofPurpose"] == dv.purpose.Term()
	})

	if len(matching) == 0 {
		return &Result{Error: fmt.Errorf("%w: purpose %s", ErrNoMatchingProofs, dv.purpose.Term())}, nil
	}

	expectedIssuer := dv.expectedIssuer
	if expectedIssuer == "" && dv.issuerFromDoc {
		expectedIssuer = FindIssuer(raw)
	}

	result := &Result{Verified: true}

	for _, proofObject := range matching {
		pr := dv.verifyProof(jsonLdObject, proofObject, expectedIssuer, opts)
		if pr.Error != nil {
			logger.Debugf("proof by %s rejected: %v", pr.VerificationMethod, pr.Error)
		}

		result.Verified = result.Verified && pr.Verified
		result.Results = append(result.Results, pr)
	}

	if !result.Verified {
		result.Error = lo.FindOrElse(result.Results, ProofResult{}, func(r ProofResult) bool {
			return r.Error != nil
		}).Error
	}

	return result, nil
}

func (dv *DocumentVerifier) verifyProof(jsonLdObject, proofObject map[string]interface{}, expectedIssuer string,
	opts []processor.Opts) ProofResult {
	res := ProofResult{Proof: proofObject}

	p, err := proof.NewProof(proofObject)
	if err != nil {
		res.Error = err

		return res
	}

	res.VerificationMethod = p.VerificationMethod

	suite, ok := lo.Find(dv.suites, func(s VerificationSuite) bool {
		return s.Accept(p.Type)
	})
	if !ok {
		res.Error = fmt.Errorf("%w: %s", ErrUnsupportedProofType, p.Type)

		return res
	}

	vmID, err := p.PublicKeyID()
	if err != nil {
		res.Error = err

		return res
	}

	vm, err := dv.resolver.ResolveVerificationMethod(vmID)
	if err != nil {
		res.Error = fmt.Errorf("proof invalid public key id: %w", err)

		return res
	}

	if vm.Type != suite.VerificationMethodType() {
		res.Error = fmt.Errorf("%w: %s", ErrVerificationMethodType, vm.Type)

		return res
	}

	if expectedIssuer != "" && vm.Controller != expectedIssuer {
		res.Error = fmt.Errorf("%w: %s is controlled by %s, expected %s",
			ErrIssuerMismatch, vm.ID, vm.Controller, expectedIssuer)

		return res
	}

	message, err := proof.CreateVerifyData(suite, jsonLdObject, proofObject, opts...)
	if err != nil {
		res.Error = fmt.Errorf("create verify data: %w", err)

		return res
	}

	verified, err := suite.VerifyProofSignature(vm.ID, vm.JWK, message, p.ProofValue)
	if err != nil {
		res.Error = err

		return res
	}

	if !verified {
		res.Error = ErrInvalidSignature

		return res
	}

	if err = dv.purpose.Validate(p, vm); err != nil {
		res.Error = err

		return res
	}

	res.Verified = true

	return res
}

// FindIssuer finds the issuer (or holder) id in a JSON-LD document.
func FindIssuer(payload []byte) string {
	parsed := gjson.ParseBytes(payload)

	for _, p := range possibleIssuerPath {
		if str := parsed.Get(p).Str; str != "" {
			return str
		}
	}

	return ""
}
