// Package specs holds the OpenAPI documents of the HTTP API. Package v1specs
// is generated from v1.yaml; run go generate after editing it.
package specs

import _ "embed"

//go:generate go run github.com/ogen-go/ogen/cmd/ogen --target v1specs --package v1specs --clean --config ogen.yml v1.yaml

// V1 is the OpenAPI document of version 1 of the API.
//
//go:embed v1.yaml
var V1 []byte
