package snapcrypt

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// KDF identifies a key derivation function.
type KDF string

const (
	KDFScrypt   KDF = "scrypt"
	KDFArgon2id KDF = "argon2id"
)

const (
	// MinPassphraseLength is the minimum accepted passphrase length.
	MinPassphraseLength = 8

	// KeySize is the derived key length (AES-256).
	KeySize = 32

	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// Key derivation errors.
var (
	ErrPassphraseTooWeak = errors.New("snapcrypt: passphrase too weak (minimum 8 characters)")
	ErrEmptySalt         = errors.New("snapcrypt: salt is required")
	ErrUnknownKDF        = errors.New("snapcrypt: unknown kdf")
)

// ParseKDF converts a configuration value to a KDF.
// The empty string selects scrypt.
func ParseKDF(s string) (KDF, error) {
	switch KDF(s) {
	case "", KDFScrypt:
		return KDFScrypt, nil
	case KDFArgon2id:
		return KDFArgon2id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKDF, s)
	}
}

// DeriveKey derives a KeySize-byte key from passphrase and salt.
// The result is deterministic for the same inputs, so a fixed salt lets a
// restarted process rebuild the key that sealed older artifacts.
func DeriveKey(passphrase, salt []byte, kdf KDF) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}

	switch kdf {
	case "", KDFScrypt:
		key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, KeySize)
		if err != nil {
			return nil, fmt.Errorf("%w: derive key: %v", ErrCrypto, err)
		}
		return key, nil
	case KDFArgon2id:
		return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKDF, kdf)
	}
}

// ZeroKey overwrites key material in place.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
