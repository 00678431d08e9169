package config

// Version is the broker binary version.
// Set at build time via: -ldflags "-X github.com/metalbroker/metalbroker/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
