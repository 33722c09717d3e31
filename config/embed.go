package config

import _ "embed"

// Default holds the embedded default configuration, used as the lowest layer
// before conf.yaml, environment variables, and the Lua overlay are merged in.
//
//go:embed conf.yaml
var Default []byte
