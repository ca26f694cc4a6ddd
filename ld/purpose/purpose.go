/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package purpose implements proof purposes: the reason a proof was created, checked against
// the verification relationships the key controller grants.
package purpose

import (
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/did-go/doc/did"

	"github.com/cfries/es256signature2020/ld/proof"
	"github.com/cfries/es256signature2020/vermethod"
)

const (
	// AssertionMethod is the proofPurpose term for assertions such as credentials.
	AssertionMethod = "assertionMethod"
	// Authentication is the proofPurpose term for authentication, e.g. presentations.
	Authentication = "authentication"
)

var (
	// ErrPurposeMismatch is returned when proofPurpose differs from the expected term.
	ErrPurposeMismatch = errors.New("proof purpose mismatch")
	// ErrNotAuthorized is returned when the controller does not list the method under the purpose relationship.
	ErrNotAuthorized = errors.New("verification method not authorized by controller")
	// ErrTimestampOutOfRange is returned when created is further than MaxTimestampDelta from the check date.
	ErrTimestampOutOfRange = errors.New("proof created time is out of range")
	// ErrProofExpired is returned when the proof expires before the check date.
	ErrProofExpired = errors.New("proof has expired")
	// ErrChallengeMismatch is returned when the proof challenge differs from the expected one.
	ErrChallengeMismatch = errors.New("proof challenge mismatch")
	// ErrDomainMismatch is returned when the proof domain differs from the expected one.
	ErrDomainMismatch = errors.New("proof domain mismatch")
	// ErrUnknownPurpose is returned by FromTerm for unsupported terms.
	ErrUnknownPurpose = errors.New("unknown proof purpose")
)

// ProofPurpose is applied to a proof before signing and validated after the signature checks out.
type ProofPurpose interface {
	// Term returns the proofPurpose value.
	Term() string
	// Update writes the purpose members into a proof object before it is signed.
	Update(proofObject map[string]interface{})
	// Validate checks a proof made with vm.
	Validate(p *proof.Proof, vm *vermethod.VerificationMethod) error
}

// Opt configures a proof purpose.
type Opt func(p *ControllerProofPurpose)

// WithDate sets the date proofs are checked against. Defaults to the time of validation.
func WithDate(date time.Time) Opt {
	return func(p *ControllerProofPurpose) {
		p.date = date
	}
}

// WithMaxTimestampDelta limits how far created may be from the check date. Zero means unlimited.
func WithMaxTimestampDelta(delta time.Duration) Opt {
	return func(p *ControllerProofPurpose) {
		p.maxTimestampDelta = delta
	}
}

// ControllerProofPurpose requires the controller of the verification method to list it under a
// verification relationship named after the purpose term.
type ControllerProofPurpose struct {
	term              string
	relationship      did.VerificationRelationship
	date              time.Time
	maxTimestampDelta time.Duration
}

// NewControllerProofPurpose creates a purpose for term checked against relationship.
func NewControllerProofPurpose(term string, relationship did.VerificationRelationship,
	opts ...Opt) *ControllerProofPurpose {
	p := &ControllerProofPurpose{term: term, relationship: relationship}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewAssertionProofPurpose creates the assertionMethod purpose.
func NewAssertionProofPurpose(opts ...Opt) *ControllerProofPurpose {
	return NewControllerProofPurpose(AssertionMethod, did.AssertionMethod, opts...)
}

// Term implements ProofPurpose.
func (p *ControllerProofPurpose) Term() string {
	return p.term
}

// Update implements ProofPurpose.
func (p *ControllerProofPurpose) Update(proofObject map[string]interface{}) {
	proofObject["proofPurpose"] = p.term
}

// Validate implements ProofPurpose.
func (p *ControllerProofPurpose) Validate(pr *proof.Proof, vm *vermethod.VerificationMethod) error {
	if pr.ProofPurpose != p.term {
		return fmt.Errorf("%w: got %q, expected %q", ErrPurposeMismatch, pr.ProofPurpose, p.term)
	}

	date := p.date
	if date.IsZero() {
		date = time.Now()
	}

	if p.maxTimestampDelta > 0 {
		if pr.Created == nil {
			return fmt.Errorf("%w: created is missing", ErrTimestampOutOfRange)
		}

		delta := date.Sub(pr.Created.Time)
		if delta < 0 {
			delta = -delta
		}

		if delta > p.maxTimestampDelta {
			return fmt.Errorf("%w: %s from %s", ErrTimestampOutOfRange, delta, date.Format(time.RFC3339))
		}
	}

	if pr.Expires != nil && date.After(pr.Expires.Time) {
		return fmt.Errorf("%w: at %s", ErrProofExpired, pr.Expires.FormatToString())
	}

	if vm == nil || !vm.HasRelationship(p.relationship) {
		id := ""
		if vm != nil {
			id = vm.ID
		}

		return fmt.Errorf("%w: %s is not listed under %s", ErrNotAuthorized, id, p.term)
	}

	return nil
}

// AuthenticationProofPurpose is the authentication purpose with its challenge and optional domain.
type AuthenticationProofPurpose struct {
	*ControllerProofPurpose
	challenge string
	domain    string
}

// NewAuthenticationProofPurpose creates the authentication purpose. challenge is required.
func NewAuthenticationProofPurpose(challenge, domain string, opts ...Opt) (*AuthenticationProofPurpose, error) {
	if challenge == "" {
		return nil, errors.New("authentication purpose requires a challenge")
	}

	return &AuthenticationProofPurpose{
		ControllerProofPurpose: NewControllerProofPurpose(Authentication, did.Authentication, opts...),
		challenge:              challenge,
		domain:                 domain,
	}, nil
}

// Update implements ProofPurpose.
func (p *AuthenticationProofPurpose) Update(proofObject map[string]interface{}) {
	p.ControllerProofPurpose.Update(proofObject)

	proofObject["challenge"] = p.challenge

	if p.domain != "" {
		proofObject["domain"] = p.domain
	}
}

// Validate implements ProofPurpose.
func (p *AuthenticationProofPurpose) Validate(pr *proof.Proof, vm *vermethod.VerificationMethod) error {
	if pr.Challenge != p.challenge {
		return fmt.Errorf("%w: got %q", ErrChallengeMismatch, pr.Challenge)
	}

	if p.domain != "" && pr.Domain != p.domain {
		return fmt.Errorf("%w: got %q, expected %q", ErrDomainMismatch, pr.Domain, p.domain)
	}

	return p.ControllerProofPurpose.Validate(pr, vm)
}

// FromTerm creates the purpose named by term.
func FromTerm(term, challenge, domain string, opts ...Opt) (ProofPurpose, error) {
	switch term {
	case "", AssertionMethod:
		return NewAssertionProofPurpose(opts...), nil
	case Authentication:
		return NewAuthenticationProofPurpose(challenge, domain, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPurpose, term)
	}
}
