// Package output renders snapkeep-cli results.
//
// Backup records and statistics are printed as aligned tables by default,
// or as JSON or YAML for scripting. Spinner and ProgressBar give feedback
// on the terminal while a backup is created or downloaded.
package output
