package demo_configs

import (
	"embed"
)

// FS provides embedded default config files for external usage.
//
//go:embed *.yaml *.json
var FS embed.FS
