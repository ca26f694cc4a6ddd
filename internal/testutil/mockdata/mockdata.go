/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mockdata holds fixed fixtures shared by tests: an ES256 key pair, an unsigned
// credential issued by the key controller and the controller's DID document.
package mockdata

import (
	_ "embed" //nolint:gci // required for go:embed
	"encoding/json"
)

// JWS2020ContextURL is the URL the simplified JsonWebKey2020 context is served under.
const JWS2020ContextURL = "https://w3id.org/security/suites/jws-2020/v1"

// nolint:gochecknoglobals // required for go:embed
var (
	//go:embed testdata/key_pair.json
	KeyPair []byte
	//go:embed testdata/credential.json
	Credential []byte
	//go:embed testdata/did_document.json
	DIDDocument []byte
	//go:embed testdata/jws_context.json
	JWSContext []byte
)

// CredentialObject returns a fresh decoded copy of Credential.
func CredentialObject() map[string]interface{} {
	return mustObject(Credential)
}

// DIDDocumentObject returns a fresh decoded copy of DIDDocument.
func DIDDocumentObject() map[string]interface{} {
	return mustObject(DIDDocument)
}

func mustObject(raw []byte) map[string]interface{} {
	var obj map[string]interface{}

	if err := json.Unmarshal(raw, &obj); err != nil {
		panic(err)
	}

	return obj
}
