/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package documentloader implements a JSON-LD document loader preloaded with embedded
// contexts. Static documents (contexts, DID documents, verification methods) can be added
// at runtime; HTTP(S) URLs that are not static are fetched through an optional remote
// loader and kept in the context store.
package documentloader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
	ldcontext "github.com/trustbloc/did-go/doc/ld/context"
	didloader "github.com/trustbloc/did-go/doc/ld/documentloader"
	ldstore "github.com/trustbloc/did-go/doc/ld/store"
	"github.com/trustbloc/did-go/legacy/mem"
	"github.com/trustbloc/kms-go/spi/storage"
)

var logger = log.New("es256signature2020/documentloader")

// ErrDocumentNotFound is returned when a URL is neither static nor resolvable remotely.
var ErrDocumentNotFound = errors.New("document not found")

// RemoteProvider serves a set of JSON-LD contexts that are imported when the loader is created.
type RemoteProvider = didloader.RemoteProvider

type loaderOpts struct {
	extraContexts   []ldcontext.Document
	remote          ld.DocumentLoader
	remoteProviders []RemoteProvider
	storage         storage.Provider
}

// Opts configures DocumentLoader during creation.
type Opts func(opts *loaderOpts)

// WithExtraContexts sets the extra contexts (in addition to embedded) for preloading.
// Extra contexts replace embedded ones with the same URL.
func WithExtraContexts(contexts ...ldcontext.Document) Opts {
	return func(opts *loaderOpts) {
		opts.extraContexts = append(opts.extraContexts, contexts...)
	}
}

// WithRemoteDocumentLoader specifies loader for fetching documents from remote URLs.
// Documents are fetched with this loader only if they are not static.
func WithRemoteDocumentLoader(loader ld.DocumentLoader) Opts {
	return func(opts *loaderOpts) {
		opts.remote = loader
	}
}

// WithRemoteProvider imports the contexts served by provider.
func WithRemoteProvider(provider RemoteProvider) Opts {
	return func(opts *loaderOpts) {
		opts.remoteProviders = append(opts.remoteProviders, provider)
	}
}

// WithStorageProvider sets the storage backing the context store. In-memory by default.
func WithStorageProvider(provider storage.Provider) Opts {
	return func(opts *loaderOpts) {
		opts.storage = provider
	}
}

type storeProvider struct {
	contexts        ldstore.ContextStore
	remoteProviders ldstore.RemoteProviderStore
}

func (p *storeProvider) JSONLDContextStore() ldstore.ContextStore {
	return p.contexts
}

func (p *storeProvider) JSONLDRemoteProviderStore() ldstore.RemoteProviderStore {
	return p.remoteProviders
}

// DocumentLoader is an implementation of ld.DocumentLoader backed by a JSON-LD context store.
type DocumentLoader struct {
	store  ldstore.ContextStore
	loader *didloader.DocumentLoader
}

// New returns a new DocumentLoader instance.
func New(opts ...Opts) (*DocumentLoader, error) {
	o := &loaderOpts{}

	for _, opt := range opts {
		opt(o)
	}

	if o.storage == nil {
		o.storage = mem.NewProvider()
	}

	contextStore, err := ldstore.NewContextStore(o.storage)
	if err != nil {
		return nil, fmt.Errorf("create context store: %w", err)
	}

	remoteProviderStore, err := ldstore.NewRemoteProviderStore(o.storage)
	if err != nil {
		return nil, fmt.Errorf("create remote provider store: %w", err)
	}

	var didOpts []didloader.Opts

	if len(o.extraContexts) > 0 {
		didOpts = append(didOpts, didloader.WithExtraContexts(withDocumentURL(o.extraContexts)...))
	}

	if o.remote != nil {
		didOpts = append(didOpts, didloader.WithRemoteDocumentLoader(o.remote))
	}

	for _, p := range o.remoteProviders {
		didOpts = append(didOpts, didloader.WithRemoteProvider(p))
	}

	loader, err := didloader.NewDocumentLoader(&storeProvider{
		contexts:        contextStore,
		remoteProviders: remoteProviderStore,
	}, didOpts...)
	if err != nil {
		return nil, fmt.Errorf("create document loader: %w", err)
	}

	return &DocumentLoader{store: contextStore, loader: loader}, nil
}

// AddContexts adds context documents under their URL.
func (l *DocumentLoader) AddContexts(contexts ...ldcontext.Document) error {
	if err := l.store.Import(withDocumentURL(contexts)); err != nil {
		return fmt.Errorf("import contexts: %w", err)
	}

	return nil
}

// AddDocument adds a static document under u. doc may be raw JSON ([]byte, json.RawMessage,
// string) or an already decoded JSON value.
func (l *DocumentLoader) AddDocument(u string, doc interface{}) error {
	var raw []byte

	switch d := doc.(type) {
	case []byte:
		raw = d
	case json.RawMessage:
		raw = d
	case string:
		raw = []byte(d)
	default:
		var err error

		raw, err = json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal document %s: %w", u, err)
		}
	}

	parsed, err := ld.DocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("document from reader for %s: %w", u, err)
	}

	if err = l.store.Put(u, &ld.RemoteDocument{DocumentURL: u, Document: parsed}); err != nil {
		return fmt.Errorf("store document %s: %w", u, err)
	}

	return nil
}

// LoadDocument resolves u from the context store, falling back to the document u is a
// fragment of. Other HTTP(S) URLs go to the remote loader and are stored on success.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, err := l.lookup(u)
	if err != nil || doc != nil {
		return doc, err
	}

	if base, _, found := strings.Cut(u, "#"); found {
		if doc, err = l.lookup(base); err != nil || doc != nil {
			return doc, err
		}
	}

	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, u)
	}

	logger.Debugf("loading remote document %s", u)

	doc, err = l.loader.LoadDocument(u)
	if err != nil {
		if errors.Is(err, didloader.ErrContextNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, u)
		}

		return nil, fmt.Errorf("load remote document %s: %w", u, err)
	}

	return doc, nil
}

// lookup returns nil, nil when u is not stored.
func (l *DocumentLoader) lookup(u string) (*ld.RemoteDocument, error) {
	doc, err := l.store.Get(u)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, nil //nolint:nilnil
		}

		return nil, fmt.Errorf("load document %s: %w", u, err)
	}

	return doc, nil
}

func withDocumentURL(contexts []ldcontext.Document) []ldcontext.Document {
	result := make([]ldcontext.Document, 0, len(contexts))

	for _, c := range contexts {
		if c.DocumentURL == "" {
			c.DocumentURL = c.URL
		}

		result = append(result, c)
	}

	return result
}
