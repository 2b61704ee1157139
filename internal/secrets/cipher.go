// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// MasterKeySize is the length of the raw key file (AES-256).
	MasterKeySize = 32

	blobVersion  byte = 1
	gcmNonceSize      = 12
	gcmTagSize        = 16

	hkdfSalt = "movie-agent-demo/secure-config"
	hkdfInfo = "config-blob-v1"

	blobMagic = "MACF"

	// headerSize covers magic plus the version byte.
	headerSize = len(blobMagic) + 1
)

// sealer encrypts and decrypts configuration blobs for one master key.
type sealer struct {
	aead cipher.AEAD
	rand io.Reader
}

func newSealer(masterKey []byte, random io.Reader) (*sealer, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errInvalidKeyLength, len(masterKey), MasterKeySize)
	}

	dataKey := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, []byte(hkdfSalt), []byte(hkdfInfo)), dataKey); err != nil {
		return nil, fmt.Errorf("derive data key: %w", err)
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &sealer{aead: gcm, rand: random}, nil
}

func blobHeader() []byte {
	h := make([]byte, 0, headerSize)
	h = append(h, blobMagic...)
	return append(h, blobVersion)
}

// seal returns header || nonce || ciphertext || tag.
func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	header := blobHeader()
	out := make([]byte, 0, headerSize+gcmNonceSize+len(plaintext)+gcmTagSize)
	out = append(out, header...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, header), nil
}

func (s *sealer) open(blob []byte) ([]byte, error) {
	if len(blob) < headerSize+gcmNonceSize+gcmTagSize {
		return nil, fmt.Errorf("%w: %d bytes", errBlobTooShort, len(blob))
	}
	header := blob[:headerSize]
	if string(header[:len(blobMagic)]) != blobMagic {
		return nil, errBadMagic
	}
	if v := header[len(blobMagic)]; v != blobVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, v)
	}

	nonce := blob[headerSize : headerSize+gcmNonceSize]
	plaintext, err := s.aead.Open(nil, nonce, blob[headerSize+gcmNonceSize:], header)
	if err != nil {
		return nil, errAuthentication
	}
	return plaintext, nil
}
