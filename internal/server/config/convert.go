package config

import (
	"strings"

	"github.com/yndnr/snapkeep/internal/storage"
	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/pkg/crypto/snapcrypt"
)

// ToKVConfig maps the storage section onto the Badger engine configuration.
func ToKVConfig(cfg *ServerConfig) storage.KVConfig {
	kv := storage.DefaultKVConfig(cfg.Storage.BadgerDir)
	if cfg.Storage.BadgerGCInterval > 0 {
		kv.Badger.GCInterval = cfg.Storage.BadgerGCInterval.String()
	}
	return kv
}

// ToLoggerConfig maps the log section onto the logger configuration.
func ToLoggerConfig(cfg *ServerConfig) logger.Config {
	lc := logger.DefaultConfig()
	lc.Component = "snapkeep-server"
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		lc.Format = cfg.Log.Format
	}
	return lc
}

// EncryptionEnabled reports whether a passphrase is configured.
func EncryptionEnabled(cfg *ServerConfig) bool {
	return cfg.Security.EncryptionPassphrase != ""
}

// NewCipher derives the artifact encryption key and returns a cipher
// engine. It returns nil, nil when encryption is not configured.
func NewCipher(cfg *ServerConfig) (*snapcrypt.Engine, error) {
	if !EncryptionEnabled(cfg) {
		return nil, nil
	}
	kdf, err := snapcrypt.ParseKDF(cfg.Security.KDF)
	if err != nil {
		return nil, err
	}
	return snapcrypt.NewFromPassphrase(
		[]byte(cfg.Security.EncryptionPassphrase),
		[]byte(cfg.Security.KDFSalt),
		kdf,
	)
}

// IsBadgerLedger reports whether the ledger uses the badger backend.
func IsBadgerLedger(cfg *ServerConfig) bool {
	return strings.EqualFold(cfg.Storage.LedgerBackend, LedgerBackendBadger)
}

// TLSEnabled reports whether the HTTP server should serve HTTPS.
func TLSEnabled(cfg *ServerConfig) bool {
	return cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != ""
}
