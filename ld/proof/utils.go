/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"errors"
	"fmt"

	jsonutil "github.com/cfries/es256signature2020/util/json"
)

const jsonldProof = "proof"

// ErrProofNotFound is returned when proof is not found.
var ErrProofNotFound = errors.New("proof not found")

// GetProofs gets proof(s) from LD Object.
func GetProofs(jsonLdObject map[string]interface{}) ([]*Proof, error) {
	entries, err := proofEntries(jsonLdObject)
	if err != nil {
		return nil, err
	}

	result := make([]*Proof, 0, len(entries))

	for i, e := range entries {
		proof, err := NewProof(e)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}

		result = append(result, proof)
	}

	return result, nil
}

// GetProofObjects returns the raw proof objects of LD Object.
func GetProofObjects(jsonLdObject map[string]interface{}) ([]map[string]interface{}, error) {
	return proofEntries(jsonLdObject)
}

func proofEntries(jsonLdObject map[string]interface{}) ([]map[string]interface{}, error) {
	entry, ok := jsonLdObject[jsonldProof]
	if !ok || entry == nil {
		return nil, ErrProofNotFound
	}

	var typedEntry []interface{}

	switch te := entry.(type) {
	case []interface{}:
		typedEntry = te
	case map[string]interface{}:
		typedEntry = []interface{}{te}
	default:
		return nil, fmt.Errorf("expecting []interface{} or map[string]interface{}, got %T", entry)
	}

	if len(typedEntry) == 0 {
		return nil, ErrProofNotFound
	}

	result := make([]map[string]interface{}, 0, len(typedEntry))

	for _, e := range typedEntry {
		emap, ok := e.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("wrong proof entry, expecting map[string]interface{}, got %T", e)
		}

		result = append(result, emap)
	}

	return result, nil
}

// AddProof adds a proof to LD Object. A single proof is stored as an object, more than one as an array.
func AddProof(jsonLdObject map[string]interface{}, proof *Proof) {
	entry, exists := jsonLdObject[jsonldProof]
	if !exists || entry == nil {
		jsonLdObject[jsonldProof] = proof.JSONLdObject()

		return
	}

	var proofs []interface{}

	switch p := entry.(type) {
	case []interface{}:
		proofs = p
	default:
		proofs = []interface{}{p}
	}

	jsonLdObject[jsonldProof] = append(proofs, proof.JSONLdObject())
}

// GetCopyWithoutProof gets copy of JSON LD Object without proofs (signatures).
func GetCopyWithoutProof(jsonLdObject map[string]interface{}) map[string]interface{} {
	return jsonutil.CopyExcept(jsonLdObject, jsonldProof)
}
