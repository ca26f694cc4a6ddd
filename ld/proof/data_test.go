/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/did-go/doc/ld/processor"
)

type recordingSuite struct {
	docs   []map[string]interface{}
	errAt  int
	called int
}

func (s *recordingSuite) GetCanonicalDocument(doc map[string]interface{}, _ ...processor.Opts) ([]byte, error) {
	s.called++

	if s.errAt == s.called {
		return nil, errors.New("canonicalization failed")
	}

	s.docs = append(s.docs, doc)

	return json.Marshal(doc)
}

func (s *recordingSuite) GetDigest(doc []byte) []byte {
	digest := sha256.Sum256(doc)

	return digest[:]
}

func TestCreateVerifyData(t *testing.T) {
	context := []interface{}{"https://www.w3.org/2018/credentials/v1"}

	newDoc := func() map[string]interface{} {
		return map[string]interface{}{
			"@context": context,
			"id":       "urn:uuid:1",
			"proof":    testProofObject("assertionMethod"),
		}
	}

	t.Run("proof options and document digests", func(t *testing.T) {
		s := &recordingSuite{}
		doc := newDoc()
		proofObject := testProofObject("assertionMethod")
		proofObject["jws"] = "detached"

		data, err := CreateVerifyData(s, doc, proofObject)
		require.NoError(t, err)
		require.Len(t, data, 2*sha256.Size)
		require.Len(t, s.docs, 2)

		options := s.docs[0]
		require.Equal(t, context, options["@context"])
		require.NotContains(t, options, "proofValue")
		require.NotContains(t, options, "jws")
		require.Equal(t, "EcdsaSecp256r1Signature2019", options["type"])
		require.Equal(t, testCreated, options["created"])

		require.NotContains(t, s.docs[1], "proof")
		require.Contains(t, doc, "proof")
		require.Contains(t, proofObject, "proofValue")

		optionsJSON, err := json.Marshal(options)
		require.NoError(t, err)

		docJSON, err := json.Marshal(s.docs[1])
		require.NoError(t, err)

		optionsDigest := sha256.Sum256(optionsJSON)
		docDigest := sha256.Sum256(docJSON)
		require.Equal(t, append(optionsDigest[:], docDigest[:]...), data)
	})

	t.Run("proof context is kept", func(t *testing.T) {
		s := &recordingSuite{}
		proofObject := testProofObject("assertionMethod")
		proofObject["@context"] = "https://w3id.org/security/v2"

		_, err := CreateVerifyData(s, newDoc(), proofObject)
		require.NoError(t, err)
		require.Equal(t, "https://w3id.org/security/v2", s.docs[0]["@context"])
	})

	t.Run("proofValue does not change verify data", func(t *testing.T) {
		unsigned := testProofObject("assertionMethod")
		delete(unsigned, "proofValue")

		before, err := CreateVerifyData(&recordingSuite{}, newDoc(), unsigned)
		require.NoError(t, err)

		after, err := CreateVerifyData(&recordingSuite{}, newDoc(), testProofObject("assertionMethod"))
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("created is missing", func(t *testing.T) {
		proofObject := testProofObject("assertionMethod")
		delete(proofObject, "created")

		_, err := CreateVerifyData(&recordingSuite{}, newDoc(), proofObject)
		require.ErrorContains(t, err, "created is missing")
	})

	t.Run("canonicalization errors", func(t *testing.T) {
		_, err := CreateVerifyData(&recordingSuite{errAt: 1}, newDoc(), testProofObject("assertionMethod"))
		require.ErrorContains(t, err, "canonicalize proof options")

		_, err = CreateVerifyData(&recordingSuite{errAt: 2}, newDoc(), testProofObject("assertionMethod"))
		require.ErrorContains(t, err, "canonicalize document")
	})
}
