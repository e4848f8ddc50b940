package config

import "time"

// ServerConfig is the root configuration for snapkeep-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Backup   BackupSection   `koanf:"backup"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the local admin socket.
type LocalConfig struct {
	// SocketPath is the Unix socket serving the admin API to local users.
	// Empty disables the socket.
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the burst size for the per-IP limiter.
	RateBurst int `koanf:"rate_burst"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// AdminAllowList restricts /admin/v1 to these IPs or CIDRs.
	// Empty allows every client.
	AdminAllowList []string `koanf:"admin_allow_list"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set. The pair
	// is reloaded when either file changes.
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// Ledger backends.
const (
	LedgerBackendFile   = "file"
	LedgerBackendBadger = "badger"
)

// StorageSection configures storage locations.
type StorageSection struct {
	// DataDir holds the JSON data documents to snapshot.
	DataDir string `koanf:"data_dir"`

	// BackupDir holds backup artifacts.
	BackupDir string `koanf:"backup_dir"`

	// LedgerBackend selects where the ledger lives: "file" or "badger".
	LedgerBackend string `koanf:"ledger_backend"`

	// LedgerPath is the ledger file for the file backend.
	LedgerPath string `koanf:"ledger_path"`

	// BadgerDir is the database directory for the badger backend.
	BadgerDir string `koanf:"badger_dir"`

	// BadgerGCInterval is the Badger value log GC interval.
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`
}

// SecuritySection configures artifact encryption.
type SecuritySection struct {
	// EncryptionPassphrase enables encrypted backups. Empty disables them;
	// there is no built-in default.
	EncryptionPassphrase string `koanf:"encryption_passphrase"`

	// KDF selects the key derivation function: "scrypt" or "argon2id".
	KDF string `koanf:"kdf"`

	// KDFSalt is the salt for key derivation. Changing it makes existing
	// encrypted backups unreadable.
	KDFSalt string `koanf:"kdf_salt"`
}

// BackupSection configures backup behavior.
type BackupSection struct {
	// VerifyChecksum compares restored plaintext with the recorded checksum.
	VerifyChecksum bool `koanf:"verify_checksum"`

	// RetentionKeep is the default number of completed backups kept by prune.
	RetentionKeep int `koanf:"retention_keep"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
