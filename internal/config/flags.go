package config

import "strings"

// Environment variable names consulted once at startup.
const (
	EnvCAPI        = "C_API"
	EnvReadTheDocs = "READTHEDOCS"
)

// Flags are the two environment-derived switches that decide which lifecycle
// hooks get registered. They are resolved once and handed to the orchestrator.
type Flags struct {
	// CAPIEnabled turns on symbol extraction and the real API-doc directive.
	CAPIEnabled bool
	// Hosted marks a build running on the managed hosting platform.
	Hosted bool
}

// FlagsFromEnv resolves Flags through getenv (os.Getenv in production).
// C-API docs stay enabled unless C_API is explicitly "no"; hosting is detected
// by READTHEDOCS being non-empty.
func FlagsFromEnv(getenv func(string) string) Flags {
	return Flags{
		CAPIEnabled: strings.ToLower(strings.TrimSpace(getenv(EnvCAPI))) != "no",
		Hosted:      getenv(EnvReadTheDocs) != "",
	}
}
