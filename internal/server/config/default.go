package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5080"
	DefaultRateLimit       = 20.0
	DefaultRateBurst       = 40
	DefaultShutdownTimeout = 15 * time.Second

	DefaultDataDir          = "/var/lib/snapkeep/data"
	DefaultBackupDir        = "/var/lib/snapkeep/backups"
	DefaultLedgerBackend    = LedgerBackendFile
	DefaultLedgerPath       = "/var/lib/snapkeep/ledger/backups.json"
	DefaultBadgerDir        = "/var/lib/snapkeep/ledger/badger"
	DefaultBadgerGCInterval = 10 * time.Minute

	DefaultKDF     = "scrypt"
	DefaultKDFSalt = "snapkeep-backup-v1"

	DefaultVerifyChecksum = true
	DefaultRetentionKeep  = 7

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				RateLimit:       DefaultRateLimit,
				RateBurst:       DefaultRateBurst,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Storage: StorageSection{
			DataDir:          DefaultDataDir,
			BackupDir:        DefaultBackupDir,
			LedgerBackend:    DefaultLedgerBackend,
			LedgerPath:       DefaultLedgerPath,
			BadgerDir:        DefaultBadgerDir,
			BadgerGCInterval: DefaultBadgerGCInterval,
		},
		Security: SecuritySection{
			KDF:     DefaultKDF,
			KDFSalt: DefaultKDFSalt,
		},
		Backup: BackupSection{
			VerifyChecksum: DefaultVerifyChecksum,
			RetentionKeep:  DefaultRetentionKeep,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
