/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vermethod resolves verification methods referenced by linked data proofs.
package vermethod

import (
	"github.com/samber/lo"
	"github.com/trustbloc/did-go/doc/did"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
)

// VerificationMethod is defined either as raw public key bytes (Value field) or as JSON Web Key.
// Relationships lists the verification relationships its controller authorizes it for.
type VerificationMethod struct {
	ID            string
	Type          string
	Controller    string
	Value         []byte
	JWK           *jwk.JWK
	Relationships []did.VerificationRelationship
}

// HasRelationship reports whether the controller lists the method under rel.
func (vm *VerificationMethod) HasRelationship(rel did.VerificationRelationship) bool {
	return lo.Contains(vm.Relationships, rel)
}
