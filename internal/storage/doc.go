// Package storage provides the embedded key-value engine SnapKeep uses for
// metadata that benefits from a transactional store, currently the backup
// ledger when storage.ledger_backend is "badger".
//
// Artifact files and data documents live in plain directories and are
// handled by the snapshot and docsource subpackages.
package storage
