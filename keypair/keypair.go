/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keypair describes ES256 verification keys in JsonWebKey2020 form.
package keypair

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"
)

const (
	// KeyType is the verification method type of ES256 key descriptors.
	KeyType = "JsonWebKey2020"
	// JWKKeyType is the only accepted "kty".
	JWKKeyType = "EC"
	// JWKCurve is the only accepted "crv".
	JWKCurve = "P-256"

	// DIDContextV1 is the DID core context.
	DIDContextV1 = "https://www.w3.org/ns/did/v1"
	// JWS2020ContextV1 is the JsonWebKey2020 context.
	JWS2020ContextV1 = "https://w3id.org/security/suites/jws-2020/v1"
)

var (
	// ErrKeyMaterialInvalid is returned when JWK material is missing, malformed or not EC/P-256.
	ErrKeyMaterialInvalid = errors.New("key material invalid")
	// ErrNoPrivateKey is returned when private key material is requested from a public-only descriptor.
	ErrNoPrivateKey = errors.New("key descriptor has no private key")
)

// KeyDescriptor is a verification key with optional private material.
type KeyDescriptor struct {
	ID            string   `json:"id"`
	Type          string   `json:"type,omitempty"`
	Controller    string   `json:"controller,omitempty"`
	PublicKeyJWK  *jwk.JWK `json:"publicKeyJwk,omitempty"`
	PrivateKeyJWK *jwk.JWK `json:"privateKeyJwk,omitempty"`
}

type rawDescriptor struct {
	ID            string          `json:"id"`
	Type          string          `json:"type,omitempty"`
	Controller    string          `json:"controller,omitempty"`
	PublicKeyJWK  json.RawMessage `json:"publicKeyJwk,omitempty"`
	PrivateKeyJWK json.RawMessage `json:"privateKeyJwk,omitempty"`
	PublicKey     json.RawMessage `json:"publicKey,omitempty"`
	PrivateKey    json.RawMessage `json:"privateKey,omitempty"`
}

// UnmarshalJSON accepts both publicKeyJwk/privateKeyJwk and the shorter publicKey/privateKey members.
func (k *KeyDescriptor) UnmarshalJSON(data []byte) error {
	var raw rawDescriptor

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	pub, err := parseJWK(firstNonEmpty(raw.PublicKeyJWK, raw.PublicKey))
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}

	priv, err := parseJWK(firstNonEmpty(raw.PrivateKeyJWK, raw.PrivateKey))
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}

	*k = KeyDescriptor{
		ID:            raw.ID,
		Type:          raw.Type,
		Controller:    raw.Controller,
		PublicKeyJWK:  pub,
		PrivateKeyJWK: priv,
	}

	return nil
}

// Parse decodes and validates a JSON key descriptor.
func Parse(data []byte) (*KeyDescriptor, error) {
	k := &KeyDescriptor{}

	if err := json.Unmarshal(data, k); err != nil {
		if errors.Is(err, ErrKeyMaterialInvalid) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	if k.Type == "" {
		k.Type = KeyType
	}

	if err := k.Validate(); err != nil {
		return nil, err
	}

	return k, nil
}

// FromPrivateKey builds a descriptor around an existing P-256 private key.
func FromPrivateKey(id, controller string, privKey *ecdsa.PrivateKey) (*KeyDescriptor, error) {
	if privKey == nil || privKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: private key must be on %s", ErrKeyMaterialInvalid, JWKCurve)
	}

	privJWK, err := jwksupport.JWKFromKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	pubJWK, err := jwksupport.JWKFromKey(&privKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return &KeyDescriptor{
		ID:            id,
		Type:          KeyType,
		Controller:    controller,
		PublicKeyJWK:  pubJWK,
		PrivateKeyJWK: privJWK,
	}, nil
}

// Generate creates a fresh P-256 key pair.
func Generate(id, controller string) (*KeyDescriptor, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	return FromPrivateKey(id, controller, privKey)
}

// Validate checks that all key material is EC/P-256 and that both halves match.
func (k *KeyDescriptor) Validate() error {
	if k.PublicKeyJWK == nil && k.PrivateKeyJWK == nil {
		return fmt.Errorf("%w: no key material", ErrKeyMaterialInvalid)
	}

	var pub *ecdsa.PublicKey

	if k.PublicKeyJWK != nil {
		key, err := publicKey(k.PublicKeyJWK)
		if err != nil {
			return err
		}

		pub = key
	}

	if k.PrivateKeyJWK == nil {
		return nil
	}

	priv, err := privateKey(k.PrivateKeyJWK)
	if err != nil {
		return err
	}

	if pub != nil && !priv.PublicKey.Equal(pub) {
		return fmt.Errorf("%w: private key does not match public key", ErrKeyMaterialInvalid)
	}

	return nil
}

// HasPrivateKey reports whether private material is present.
func (k *KeyDescriptor) HasPrivateKey() bool {
	return k.PrivateKeyJWK != nil
}

// PublicKey returns the ECDSA public key, derived from the private key when only that is present.
func (k *KeyDescriptor) PublicKey() (*ecdsa.PublicKey, error) {
	if k.PublicKeyJWK != nil {
		return publicKey(k.PublicKeyJWK)
	}

	if k.PrivateKeyJWK != nil {
		priv, err := privateKey(k.PrivateKeyJWK)
		if err != nil {
			return nil, err
		}

		return &priv.PublicKey, nil
	}

	return nil, fmt.Errorf("%w: no key material", ErrKeyMaterialInvalid)
}

// PrivateKey returns the ECDSA private key.
func (k *KeyDescriptor) PrivateKey() (*ecdsa.PrivateKey, error) {
	if k.PrivateKeyJWK == nil {
		return nil, ErrNoPrivateKey
	}

	return privateKey(k.PrivateKeyJWK)
}

// PublicJWK returns the public JWK. It is derived from the key when publicKeyJwk is absent
// or carries private material, so the result never holds "d".
func (k *KeyDescriptor) PublicJWK() (*jwk.JWK, error) {
	if k.PublicKeyJWK != nil {
		if _, ok := k.PublicKeyJWK.Key.(*ecdsa.PublicKey); ok {
			if _, err := publicKey(k.PublicKeyJWK); err != nil {
				return nil, err
			}

			return k.PublicKeyJWK, nil
		}
	}

	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}

	j, err := jwksupport.JWKFromKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	if k.PublicKeyJWK != nil {
		j.KeyID = k.PublicKeyJWK.KeyID
	}

	return j, nil
}

// Public returns a copy of the descriptor without private material.
func (k *KeyDescriptor) Public() (*KeyDescriptor, error) {
	pub, err := k.PublicJWK()
	if err != nil {
		return nil, err
	}

	return &KeyDescriptor{
		ID:           k.ID,
		Type:         k.keyType(),
		Controller:   k.Controller,
		PublicKeyJWK: pub,
	}, nil
}

// Thumbprint returns the base64url RFC 7638 SHA-256 thumbprint of the public key.
func (k *KeyDescriptor) Thumbprint() (string, error) {
	pub, err := k.PublicJWK()
	if err != nil {
		return "", err
	}

	tp, err := pub.JSONWebKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return base64.RawURLEncoding.EncodeToString(tp), nil
}

// VerificationMethodDocument returns the public key as a JSON-LD verification method.
func (k *KeyDescriptor) VerificationMethodDocument() (map[string]interface{}, error) {
	pub, err := k.PublicJWK()
	if err != nil {
		return nil, err
	}

	pubJSON, err := pub.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	var pubMap map[string]interface{}

	if err = json.Unmarshal(pubJSON, &pubMap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return map[string]interface{}{
		"@context":     []interface{}{JWS2020ContextV1},
		"id":           k.ID,
		"type":         k.keyType(),
		"controller":   k.Controller,
		"publicKeyJwk": pubMap,
	}, nil
}

// ControllerDocument returns a DID document for the key controller that lists the key
// under the given verification relationships (e.g. "assertionMethod").
func (k *KeyDescriptor) ControllerDocument(relationships ...string) (map[string]interface{}, error) {
	vm, err := k.VerificationMethodDocument()
	if err != nil {
		return nil, err
	}

	delete(vm, "@context")

	doc := map[string]interface{}{
		"@context":           []interface{}{DIDContextV1, JWS2020ContextV1},
		"id":                 k.Controller,
		"verificationMethod": []interface{}{vm},
	}

	for _, rel := range relationships {
		doc[rel] = []interface{}{k.ID}
	}

	return doc, nil
}

func (k *KeyDescriptor) keyType() string {
	if k.Type == "" {
		return KeyType
	}

	return k.Type
}

func parseJWK(raw json.RawMessage) (*jwk.JWK, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil //nolint:nilnil
	}

	j := &jwk.JWK{}

	if err := j.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyMaterialInvalid, err)
	}

	return j, nil
}

func checkParams(j *jwk.JWK) error {
	if j.Kty != "" && j.Kty != JWKKeyType {
		return fmt.Errorf("%w: kty %q, want %q", ErrKeyMaterialInvalid, j.Kty, JWKKeyType)
	}

	if j.Crv != "" && j.Crv != JWKCurve {
		return fmt.Errorf("%w: crv %q, want %q", ErrKeyMaterialInvalid, j.Crv, JWKCurve)
	}

	return nil
}

func publicKey(j *jwk.JWK) (*ecdsa.PublicKey, error) {
	if err := checkParams(j); err != nil {
		return nil, err
	}

	var pub *ecdsa.PublicKey

	switch key := j.Key.(type) {
	case *ecdsa.PublicKey:
		pub = key
	case *ecdsa.PrivateKey:
		pub = &key.PublicKey
	default:
		return nil, fmt.Errorf("%w: JWK does not hold an EC key", ErrKeyMaterialInvalid)
	}

	if pub.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve %s, want %s", ErrKeyMaterialInvalid, pub.Curve.Params().Name, JWKCurve)
	}

	return pub, nil
}

func privateKey(j *jwk.JWK) (*ecdsa.PrivateKey, error) {
	if err := checkParams(j); err != nil {
		return nil, err
	}

	priv, ok := j.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private JWK has no \"d\" member", ErrKeyMaterialInvalid)
	}

	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve %s, want %s", ErrKeyMaterialInvalid, priv.Curve.Params().Name, JWKCurve)
	}

	return priv, nil
}

func firstNonEmpty(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 && string(v) != "null" {
			return v
		}
	}

	return nil
}
