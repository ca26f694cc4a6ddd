/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"testing"

	gojose "github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"

	signer "github.com/cfries/es256signature2020/crypto-ext/signers/jws"
)

func TestNew(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	t.Run("private JWK", func(t *testing.T) {
		j, err := jwksupport.JWKFromKey(priv)
		require.NoError(t, err)

		s, err := signer.New("did:example:123#key-1", j)
		require.NoError(t, err)
		require.Equal(t, "did:example:123#key-1", s.KeyID())
		require.Equal(t, "ES256", s.Alg())
	})

	t.Run("public JWK", func(t *testing.T) {
		j, err := jwksupport.JWKFromKey(&priv.PublicKey)
		require.NoError(t, err)

		_, err = signer.New("", j)
		require.ErrorIs(t, err, signer.ErrInvalidKey)
	})

	t.Run("P-384 JWK", func(t *testing.T) {
		other, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		require.NoError(t, err)

		j, err := jwksupport.JWKFromKey(other)
		require.NoError(t, err)

		_, err = signer.New("", j)
		require.ErrorIs(t, err, signer.ErrInvalidKey)
	})

	t.Run("nil JWK", func(t *testing.T) {
		_, err := signer.New("", nil)
		require.ErrorIs(t, err, signer.ErrInvalidKey)
	})
}

func TestSigner_Sign(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	j, err := jwksupport.JWKFromKey(priv)
	require.NoError(t, err)

	s, err := signer.New("did:example:123#key-1", j)
	require.NoError(t, err)

	data := []byte("test message")

	sig, err := s.Sign(data)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	compact := base64.RawURLEncoding.EncodeToString([]byte(signer.ProtectedHeader)) + "." +
		base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(sig)

	obj, err := gojose.ParseSigned(compact)
	require.NoError(t, err)

	payload, err := obj.Verify(&priv.PublicKey)
	require.NoError(t, err)
	require.Equal(t, data, payload)
}
