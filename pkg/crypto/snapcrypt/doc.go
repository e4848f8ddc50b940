// Package snapcrypt provides the key derivation, encryption and checksum
// primitives used to seal backup artifacts.
//
// Artifacts are encrypted with AES-256 in CBC mode using PKCS#7 padding.
// Every call to Encrypt draws a fresh random IV, so encrypting the same
// plaintext twice under the same key yields different ciphertexts.
//
// Keys are never taken from a passphrase directly. DeriveKey stretches the
// configured passphrase with a memory-hard KDF:
//
//   - scrypt (default): N=16384, r=8, p=1
//   - argon2id: time=3, memory=64MiB, threads=4
//
// Ciphertext and IV cross the package boundary hex-encoded, matching the
// on-disk envelope format.
//
// Usage:
//
//	key, err := snapcrypt.DeriveKey(passphrase, salt, snapcrypt.KDFScrypt)
//	engine, err := snapcrypt.New(key)
//	ct, iv, err := engine.Encrypt(plaintext)
//	plain, err := engine.Decrypt(ct, iv)
//	sum := snapcrypt.Checksum(plaintext)
package snapcrypt
