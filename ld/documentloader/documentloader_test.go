/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package documentloader_test

import (
	"errors"
	"testing"

	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/require"
	ldcontext "github.com/trustbloc/did-go/doc/ld/context"

	"github.com/cfries/es256signature2020/internal/testutil/mockdata"
	"github.com/cfries/es256signature2020/ld/documentloader"
)

const credentialsV1 = "https://www.w3.org/2018/credentials/v1"

type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	c.calls++

	if c.err != nil {
		return nil, c.err
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: map[string]interface{}{"id": u}}, nil
}

type contextProvider struct {
	contexts []ldcontext.Document
	err      error
}

func (p *contextProvider) Endpoint() string {
	return "https://example.com/contexts"
}

func (p *contextProvider) Contexts() ([]ldcontext.Document, error) {
	return p.contexts, p.err
}

func TestNew(t *testing.T) {
	t.Run("embedded contexts are preloaded", func(t *testing.T) {
		loader, err := documentloader.New()
		require.NoError(t, err)

		doc, err := loader.LoadDocument(credentialsV1)
		require.NoError(t, err)
		require.Equal(t, credentialsV1, doc.DocumentURL)
		require.NotNil(t, doc.Document)
	})

	t.Run("remote provider contexts are imported", func(t *testing.T) {
		loader, err := documentloader.New(documentloader.WithRemoteProvider(&contextProvider{
			contexts: []ldcontext.Document{{URL: "https://example.com/provided/v1", Content: mockdata.JWSContext}},
		}))
		require.NoError(t, err)

		doc, err := loader.LoadDocument("https://example.com/provided/v1")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/provided/v1", doc.DocumentURL)
	})

	t.Run("remote provider failure", func(t *testing.T) {
		_, err := documentloader.New(documentloader.WithRemoteProvider(&contextProvider{
			err: errors.New("provider unavailable"),
		}))
		require.ErrorContains(t, err, "provider unavailable")
	})

	t.Run("extra context", func(t *testing.T) {
		loader, err := documentloader.New(documentloader.WithExtraContexts(ldcontext.Document{
			URL:     "https://example.com/context/v1",
			Content: mockdata.JWSContext,
		}))
		require.NoError(t, err)

		doc, err := loader.LoadDocument("https://example.com/context/v1")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/context/v1", doc.DocumentURL)
	})

	t.Run("invalid extra context", func(t *testing.T) {
		_, err := documentloader.New(documentloader.WithExtraContexts(ldcontext.Document{
			URL:     "https://example.com/context/v1",
			Content: []byte("{"),
		}))
		require.Error(t, err)
	})
}

func TestDocumentLoader_AddDocument(t *testing.T) {
	loader, err := documentloader.New()
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
		doc  interface{}
	}{
		{name: "bytes", url: "did:example:bytes", doc: []byte(`{"id":"did:example:bytes"}`)},
		{name: "string", url: "did:example:string", doc: `{"id":"did:example:string"}`},
		{name: "object", url: "did:example:object", doc: map[string]interface{}{"id": "did:example:object"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, loader.AddDocument(tc.url, tc.doc))

			doc, err := loader.LoadDocument(tc.url)
			require.NoError(t, err)

			obj, ok := doc.Document.(map[string]interface{})
			require.True(t, ok)
			require.Equal(t, tc.url, obj["id"])
		})
	}

	t.Run("fragment falls back to base document", func(t *testing.T) {
		doc, err := loader.LoadDocument("did:example:object#keys-1")
		require.NoError(t, err)
		require.Equal(t, "did:example:object", doc.DocumentURL)
	})

	t.Run("exact fragment match wins", func(t *testing.T) {
		require.NoError(t, loader.AddDocument("did:example:object#keys-2", `{"id":"did:example:object#keys-2"}`))

		doc, err := loader.LoadDocument("did:example:object#keys-2")
		require.NoError(t, err)
		require.Equal(t, "did:example:object#keys-2", doc.DocumentURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		require.Error(t, loader.AddDocument("did:example:bad", "{"))
	})

	t.Run("unmarshalable object", func(t *testing.T) {
		require.Error(t, loader.AddDocument("did:example:bad", map[string]interface{}{"ch": make(chan int)}))
	})
}

func TestDocumentLoader_LoadDocument(t *testing.T) {
	t.Run("unknown URL without remote loader", func(t *testing.T) {
		loader, err := documentloader.New()
		require.NoError(t, err)

		_, err = loader.LoadDocument("https://example.com/unknown")
		require.ErrorIs(t, err, documentloader.ErrDocumentNotFound)
	})

	t.Run("non-HTTP URLs are not fetched remotely", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := documentloader.New(documentloader.WithRemoteDocumentLoader(remote))
		require.NoError(t, err)

		_, err = loader.LoadDocument("did:example:unknown#keys-1")
		require.ErrorIs(t, err, documentloader.ErrDocumentNotFound)
		require.Zero(t, remote.calls)
	})

	t.Run("remote documents are cached", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := documentloader.New(documentloader.WithRemoteDocumentLoader(remote))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			doc, err := loader.LoadDocument("https://example.com/remote")
			require.NoError(t, err)
			require.Equal(t, "https://example.com/remote", doc.DocumentURL)
		}

		require.Equal(t, 1, remote.calls)
	})

	t.Run("static documents do not hit remote loader", func(t *testing.T) {
		remote := &countingLoader{}

		loader, err := documentloader.New(documentloader.WithRemoteDocumentLoader(remote))
		require.NoError(t, err)

		_, err = loader.LoadDocument(credentialsV1)
		require.NoError(t, err)
		require.Zero(t, remote.calls)
	})

	t.Run("remote failure", func(t *testing.T) {
		remote := &countingLoader{err: errors.New("connection refused")}

		loader, err := documentloader.New(documentloader.WithRemoteDocumentLoader(remote))
		require.NoError(t, err)

		_, err = loader.LoadDocument("https://example.com/remote")
		require.ErrorContains(t, err, "connection refused")

		_, err = loader.LoadDocument("https://example.com/remote")
		require.Error(t, err)
		require.Equal(t, 2, remote.calls)
	})
}
