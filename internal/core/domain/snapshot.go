package domain

import (
	"encoding/json"
	"time"
)

// SnapshotDocument is the in-memory aggregation of every data store at one
// instant. Files maps a logical store name (the document file name without
// extension) to its parsed JSON content, kept as validated raw JSON so the
// serialized snapshot reproduces each document without reinterpretation.
type SnapshotDocument struct {
	Timestamp  time.Time                  `json:"timestamp"`
	OwnerScope string                     `json:"owner_scope,omitempty"`
	Type       BackupType                 `json:"type"`
	Files      map[string]json.RawMessage `json:"files"`
}

// Envelope is the on-disk form of an encrypted artifact.
type Envelope struct {
	// Encrypted is the hex ciphertext.
	Encrypted string `json:"encrypted"`
	// IV is the hex 16-byte initialization vector.
	IV string `json:"iv"`
	// Checksum is the hex SHA-256 of the plaintext snapshot JSON.
	Checksum string `json:"checksum"`
}

// Valid reports whether the fields needed for decryption are present.
func (e *Envelope) Valid() bool {
	return e.Encrypted != "" && e.IV != ""
}
