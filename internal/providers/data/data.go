package data

import _ "embed"

//go:embed catalog.json
var Catalog []byte
