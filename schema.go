package sneedwallet

import "embed"

//go:embed schema/*.sql
var SchemaFiles embed.FS
