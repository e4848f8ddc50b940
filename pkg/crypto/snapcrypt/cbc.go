package snapcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// IVSize is the CBC initialization vector length.
const IVSize = aes.BlockSize

// ErrCrypto is returned for any encryption or decryption failure,
// including a wrong key detected through invalid padding.
var ErrCrypto = errors.New("snapcrypt: crypto error")

// ErrInvalidKey is returned when the key is not KeySize bytes.
var ErrInvalidKey = errors.New("snapcrypt: invalid key size: must be 32 bytes")

// Engine encrypts and decrypts artifacts with a fixed AES-256 key.
// It is safe for concurrent use.
type Engine struct {
	block cipher.Block
	rand  io.Reader
}

// New creates an Engine for the given 32-byte key.
func New(key []byte) (*Engine, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return &Engine{block: block, rand: rand.Reader}, nil
}

// NewFromPassphrase derives a key and builds an Engine in one step.
// The intermediate key is wiped once the block cipher is expanded.
func NewFromPassphrase(passphrase, salt []byte, kdf KDF) (*Engine, error) {
	key, err := DeriveKey(passphrase, salt, kdf)
	if err != nil {
		return nil, err
	}
	defer ZeroKey(key)
	return New(key)
}

// Encrypt pads and encrypts plaintext under a fresh random IV.
// It returns ciphertext and IV hex-encoded.
func (e *Engine) Encrypt(plaintext []byte) (ciphertextHex, ivHex string, err error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(e.rand, iv); err != nil {
		return "", "", fmt.Errorf("%w: generate iv: %v", ErrCrypto, err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(out), hex.EncodeToString(iv), nil
}

// Decrypt reverses Encrypt. Malformed hex, a wrong IV length, misaligned
// ciphertext and bad padding all yield ErrCrypto.
func (e *Engine) Decrypt(ciphertextHex, ivHex string) ([]byte, error) {
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: decode iv: %v", ErrCrypto, err)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrCrypto, IVSize, len(iv))
	}

	ct, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: decode ciphertext: %v", ErrCrypto, err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrCrypto)
	}

	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(e.block, iv).CryptBlocks(out, ct)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plain, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrCrypto)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", ErrCrypto)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrCrypto)
		}
	}
	return data[:len(data)-n], nil
}
