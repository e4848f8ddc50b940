// Package docsource enumerates and reads the JSON data documents a
// snapshot captures.
//
// Each document is one file named <store>.json in the data directory,
// written and maintained by an independent part of the application.
// The package only reads; it never writes or locks documents.
package docsource
