// Package root exposes files embedded into the binary: database migrations
// and the default application templates.
package root

import "embed"

// Migrations holds the goose SQL migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Templates holds the default application e-mail templates under templates/.
//
//go:embed templates/*
var Templates embed.FS
