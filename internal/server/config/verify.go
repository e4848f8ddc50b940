package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/pkg/crypto/snapcrypt"
)

// Verify validates the configuration. Directories that do not exist yet
// are created.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	if err := verifyBackup(&cfg.Backup); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr is invalid: %w", err)
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		return errors.New("server.http.rate_burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.HTTP.ShutdownTimeout < 0 {
		return errors.New("server.http.shutdown_timeout must not be negative")
	}
	for _, entry := range cfg.HTTP.AdminAllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("server.http.admin_allow_list: invalid CIDR %q", entry)
			}
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("server.http.admin_allow_list: invalid IP %q", entry)
		}
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and server.http.tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.http TLS file: %w", err)
		}
	}
	if path := cfg.Local.SocketPath; path != "" {
		if len(path) > maxSocketPath {
			return fmt.Errorf("server.local.socket_path is longer than %d bytes", maxSocketPath)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("server.local.socket_path: %w", err)
		}
	}
	return nil
}

// maxSocketPath is the sun_path limit on Linux, less the trailing NUL.
const maxSocketPath = 107

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if cfg.BackupDir == "" {
		return errors.New("storage.backup_dir is required")
	}
	if filepath.Clean(cfg.DataDir) == filepath.Clean(cfg.BackupDir) {
		return errors.New("storage.backup_dir must differ from storage.data_dir")
	}

	for _, dir := range []string{cfg.DataDir, cfg.BackupDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.New("cannot create directory: " + err.Error())
		}
	}

	switch strings.ToLower(cfg.LedgerBackend) {
	case LedgerBackendFile:
		if cfg.LedgerPath == "" {
			return errors.New("storage.ledger_path is required for the file ledger backend")
		}
	case LedgerBackendBadger:
		if cfg.BadgerDir == "" {
			return errors.New("storage.badger_dir is required for the badger ledger backend")
		}
	default:
		return fmt.Errorf("storage.ledger_backend must be %q or %q, got %q",
			LedgerBackendFile, LedgerBackendBadger, cfg.LedgerBackend)
	}

	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	if _, err := snapcrypt.ParseKDF(cfg.KDF); err != nil {
		return fmt.Errorf("security.kdf: %w", err)
	}
	if cfg.EncryptionPassphrase == "" {
		return nil
	}
	if len(cfg.EncryptionPassphrase) < snapcrypt.MinPassphraseLength {
		return fmt.Errorf("security.encryption_passphrase must be at least %d characters", snapcrypt.MinPassphraseLength)
	}
	if cfg.KDFSalt == "" {
		return errors.New("security.kdf_salt is required when encryption is enabled")
	}
	return nil
}

func verifyBackup(cfg *BackupSection) error {
	if cfg.RetentionKeep < 1 {
		return errors.New("backup.retention_keep must be at least 1")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if cfg.Level != "" && !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
}
