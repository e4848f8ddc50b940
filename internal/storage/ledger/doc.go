// Package ledger persists the backup ledger: the authoritative list of
// every backup attempt and its lifecycle state.
//
// The whole ledger is read and written as one JSON array through a Store.
// Every operation reloads from the Store, so nothing is cached between
// calls. Mutations hold a write lock across the full load, modify and save
// cycle; two concurrent appends both survive.
//
// Unparsable ledger content is logged, counted, and treated as an empty
// ledger so backups keep working after a corrupted write.
package ledger
