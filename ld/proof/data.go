/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"errors"
	"fmt"

	"github.com/trustbloc/did-go/doc/ld/processor"

	jsonutil "github.com/cfries/es256signature2020/util/json"
)

const jsonldContext = "@context"

// SignatureSuite encapsulates signature suite methods required for normalizing document.
type SignatureSuite interface {
	// GetCanonicalDocument will return normalized/canonical version of the document.
	GetCanonicalDocument(doc map[string]interface{}, opts ...processor.Opts) ([]byte, error)
	// GetDigest returns document digest.
	GetDigest(doc []byte) []byte
}

// CreateVerifyData returns the data that is signed or verified for a proof:
// digest(canonical proof options) || digest(canonical document without proof).
// Proof options are the proof without its signature members, under the document's @context.
func CreateVerifyData(suite SignatureSuite, jsonldDoc map[string]interface{}, proofObject map[string]interface{},
	opts ...processor.Opts) ([]byte, error) {
	if proofObject[jsonldCreated] == nil {
		return nil, errors.New("created is missing")
	}

	proofOptions := jsonutil.CopyExcept(proofObject, jsonldProofValue, jsonldJWS, jsonldSignatureValue)

	if _, ok := proofOptions[jsonldContext]; !ok {
		proofOptions[jsonldContext] = jsonldDoc[jsonldContext]
	}

	canonicalProofOptions, err := suite.GetCanonicalDocument(proofOptions, opts...)
	if err != nil {
		return nil, fmt.Errorf("canonicalize proof options: %w", err)
	}

	canonicalDoc, err := suite.GetCanonicalDocument(GetCopyWithoutProof(jsonldDoc), opts...)
	if err != nil {
		return nil, fmt.Errorf("canonicalize document: %w", err)
	}

	return append(suite.GetDigest(canonicalProofOptions), suite.GetDigest(canonicalDoc)...), nil
}
