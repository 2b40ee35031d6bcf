// Package data carries the default catalog and order snapshots shipped with the binary.
package data

import _ "embed"

var (
	//go:embed catalog.json
	Catalog []byte

	//go:embed orders.json
	Orders []byte
)
