// Package file provides the TOML-backed ConfigStore.
//
// Keys are addressed in dot notation ("store.backend"). On disk each dotted
// prefix becomes a TOML table:
//
//	[store]
//	backend = "sqlite"
package file
