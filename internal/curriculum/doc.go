// Package curriculum holds the authoritative catalog of lessons, menus,
// domains and components that currently exist.
//
// The engine consumes a catalog through the read-only Registry interface.
// Catalogs are built once, either from Go values through a Builder or from a
// content directory through LoadDir, and are never modified afterwards, so a
// single Catalog may be shared by any number of concurrent readers.
//
// Content directory layout:
//
//	lessons/*.yaml   one lesson per file
//	menus/*.yaml     one menu per file
//	domains/*.yaml   one domain per file
//	**/*.cue         documents with lessons, menus and domains lists
package curriculum
