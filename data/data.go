// Package data bundles the default datasets into the binary.
package data

import "embed"

// Bundled dataset file names.
const (
	Countries = "countries.csv"
	Housing   = "housing-prices.csv"
)

// FS holds the bundled datasets.
//
//go:embed countries.csv housing-prices.csv
var FS embed.FS
