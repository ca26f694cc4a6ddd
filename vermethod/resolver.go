/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vermethod

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
	"github.com/samber/lo"
	"github.com/trustbloc/did-go/doc/did"
	vdrapi "github.com/trustbloc/did-go/vdr/api"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
)

const defaultCacheSize = 100

var logger = log.New("es256signature2020/vermethod")

// ErrNotFound is returned when the controller document does not define the verification method.
var ErrNotFound = errors.New("verification method not found")

type didResolver interface {
	Resolve(did string, opts ...vdrapi.DIDMethodOption) (*did.DocResolution, error)
}

type resolverOpts struct {
	vdr       didResolver
	cacheSize int
}

// Opt configures Resolver.
type Opt func(opts *resolverOpts)

// WithVDR resolves DIDs through vdr instead of the document loader.
func WithVDR(vdr didResolver) Opt {
	return func(opts *resolverOpts) {
		opts.vdr = vdr
	}
}

// WithCacheSize sets how many controller documents are kept.
func WithCacheSize(size int) Opt {
	return func(opts *resolverOpts) {
		opts.cacheSize = size
	}
}

// Resolver finds verification methods and their relationships in controller documents.
// Controller documents are loaded through the JSON-LD document loader (or a VDR for DIDs)
// and parsed as DID documents.
type Resolver struct {
	loader ld.DocumentLoader
	vdr    didResolver
	cache  *lru.Cache[string, *did.Doc]
}

// NewResolver creates Resolver.
func NewResolver(loader ld.DocumentLoader, opts ...Opt) (*Resolver, error) {
	o := &resolverOpts{cacheSize: defaultCacheSize}

	for _, opt := range opts {
		opt(o)
	}

	if loader == nil && o.vdr == nil {
		return nil, errors.New("document loader or VDR is required")
	}

	cache, err := lru.New[string, *did.Doc](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create controller document cache: %w", err)
	}

	return &Resolver{loader: loader, vdr: o.vdr, cache: cache}, nil
}

// ResolveVerificationMethod resolves verification method by key id.
func (r *Resolver) ResolveVerificationMethod(verificationMethod string) (*VerificationMethod, error) {
	controllerID, _, found := strings.Cut(verificationMethod, "#")
	if !found || controllerID == "" {
		return nil, fmt.Errorf("wrong id %s to resolve", verificationMethod)
	}

	standalone := r.loadStandalone(verificationMethod)
	if standalone != nil && standalone.Controller != "" {
		controllerID = standalone.Controller
	}

	doc, err := r.controllerDocument(controllerID)
	if err != nil {
		return nil, err
	}

	vm := &VerificationMethod{ID: verificationMethod}
	defined := false

	for rel, verifications := range doc.VerificationMethods() {
		for _, verification := range verifications {
			if !sameID(doc.ID, verification.VerificationMethod.ID, verificationMethod) {
				continue
			}

			if !defined {
				vm.Type = verification.VerificationMethod.Type
				vm.Controller = verification.VerificationMethod.Controller
				vm.Value = verification.VerificationMethod.Value
				vm.JWK = verification.VerificationMethod.JSONWebKey()
				defined = true
			}

			if rel != did.VerificationRelationshipGeneral {
				vm.Relationships = append(vm.Relationships, rel)
			}
		}
	}

	if standalone != nil {
		vm.Type = standalone.Type
		vm.Controller = standalone.Controller
		vm.JWK = standalone.JWK
		defined = true
	}

	if !defined {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, verificationMethod, doc.ID)
	}

	if vm.Controller == "" {
		vm.Controller = doc.ID
	}

	vm.Relationships = lo.Uniq(vm.Relationships)

	return vm, nil
}

// controllerDocument returns the parsed controller document, from cache when possible.
func (r *Resolver) controllerDocument(controllerID string) (*did.Doc, error) {
	if doc, ok := r.cache.Get(controllerID); ok {
		return doc, nil
	}

	var (
		doc *did.Doc
		err error
	)

	if r.vdr != nil && strings.HasPrefix(controllerID, "did:") {
		doc, err = r.resolveDID(controllerID)
	} else {
		doc, err = r.loadDocument(controllerID)
	}

	if err != nil {
		return nil, err
	}

	r.cache.Add(controllerID, doc)

	return doc, nil
}

func (r *Resolver) resolveDID(id string) (*did.Doc, error) {
	docResolution, err := r.vdr.Resolve(id)
	if err != nil {
		return nil, fmt.Errorf("resolve DID %s: %w", id, err)
	}

	return docResolution.DIDDocument, nil
}

func (r *Resolver) loadDocument(id string) (*did.Doc, error) {
	if r.loader == nil {
		return nil, fmt.Errorf("no document loader for %s", id)
	}

	remote, err := r.loader.LoadDocument(id)
	if err != nil {
		return nil, fmt.Errorf("load controller document %s: %w", id, err)
	}

	raw, err := json.Marshal(remote.Document)
	if err != nil {
		return nil, fmt.Errorf("marshal controller document %s: %w", id, err)
	}

	doc, err := did.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse controller document %s: %w", id, err)
	}

	return doc, nil
}

type standaloneMethod struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Controller   string          `json:"controller"`
	PublicKeyJWK json.RawMessage `json:"publicKeyJwk"`
}

// loadStandalone returns the verification method when the loader serves it under its own id.
func (r *Resolver) loadStandalone(id string) *VerificationMethod {
	if r.loader == nil {
		return nil
	}

	remote, err := r.loader.LoadDocument(id)
	if err != nil {
		return nil
	}

	raw, err := json.Marshal(remote.Document)
	if err != nil {
		return nil
	}

	var m standaloneMethod

	if err = json.Unmarshal(raw, &m); err != nil || m.ID != id || len(m.PublicKeyJWK) == 0 {
		return nil
	}

	key := &jwk.JWK{}

	if err = key.UnmarshalJSON(m.PublicKeyJWK); err != nil {
		logger.Warnf("verification method %s has invalid publicKeyJwk: %v", id, err)

		return nil
	}

	if priv, ok := key.Key.(*ecdsa.PrivateKey); ok {
		key.Key = &priv.PublicKey
	}

	return &VerificationMethod{
		ID:         m.ID,
		Type:       m.Type,
		Controller: m.Controller,
		JWK:        key,
	}
}

func sameID(docID, methodID, want string) bool {
	if methodID == want {
		return true
	}

	return strings.HasPrefix(methodID, "#") && docID+methodID == want
}
