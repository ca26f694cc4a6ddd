/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"

	ecdsasigner "github.com/cfries/es256signature2020/crypto-ext/signers/ecdsa"
	jwssigner "github.com/cfries/es256signature2020/crypto-ext/signers/jws"
)

const testKeyID = "did:web:example.com#keys-1"

func newKey(t *testing.T, curve elliptic.Curve) (*ecdsa.PrivateKey, *jwk.JWK) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	j, err := jwksupport.JWKFromKey(&priv.PublicKey)
	require.NoError(t, err)

	return priv, j
}

func TestNew(t *testing.T) {
	t.Run("public JWK", func(t *testing.T) {
		_, j := newKey(t, elliptic.P256())

		v, err := New(testKeyID, j)
		require.NoError(t, err)
		require.Equal(t, testKeyID, v.KeyID())
	})

	t.Run("private JWK", func(t *testing.T) {
		priv, _ := newKey(t, elliptic.P256())

		j, err := jwksupport.JWKFromKey(priv)
		require.NoError(t, err)

		_, err = New(testKeyID, j)
		require.NoError(t, err)
	})

	t.Run("nil JWK", func(t *testing.T) {
		_, err := New(testKeyID, nil)
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("P-384 JWK", func(t *testing.T) {
		_, j := newKey(t, elliptic.P384())

		_, err := New(testKeyID, j)
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("Ed25519 JWK", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		j, err := jwksupport.JWKFromKey(pub)
		require.NoError(t, err)

		_, err = New(testKeyID, j)
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestVerifier_Verify(t *testing.T) {
	priv, j := newKey(t, elliptic.P256())

	privJWK, err := jwksupport.JWKFromKey(priv)
	require.NoError(t, err)

	signer, err := jwssigner.New(testKeyID, privJWK)
	require.NoError(t, err)

	v, err := New(testKeyID, j)
	require.NoError(t, err)

	data := []byte("test message")

	sig, err := signer.Sign(data)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	t.Run("valid signature", func(t *testing.T) {
		ok, err := v.Verify(data, sig)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("empty payload", func(t *testing.T) {
		empty, err := signer.Sign(nil)
		require.NoError(t, err)

		ok, err := v.Verify(nil, empty)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("tampered data", func(t *testing.T) {
		ok, err := v.Verify([]byte("test messagE"), sig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("tampered signature", func(t *testing.T) {
		tampered := append([]byte{}, sig...)
		tampered[10] ^= 0xff

		ok, err := v.Verify(data, tampered)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("other key", func(t *testing.T) {
		_, otherJWK := newKey(t, elliptic.P256())

		other, err := New(testKeyID, otherJWK)
		require.NoError(t, err)

		ok, err := other.Verify(data, sig)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("raw ES256 signature over data is not a JWS signature", func(t *testing.T) {
		rawSigner, err := ecdsasigner.NewES256(priv)
		require.NoError(t, err)

		raw, err := rawSigner.Sign(data)
		require.NoError(t, err)

		ok, err := v.Verify(data, raw)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("DER signature is rejected", func(t *testing.T) {
		derSigner, err := ecdsasigner.NewES256(priv, ecdsasigner.WithASN1())
		require.NoError(t, err)

		der, err := derSigner.Sign(data)
		require.NoError(t, err)

		ok, err := v.Verify(data, der)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("malformed signature", func(t *testing.T) {
		ok, err := v.Verify(data, []byte("short"))
		require.NoError(t, err)
		require.False(t, ok)
	})
}
