package util

//nolint:gochecknoglobals
var (
	// Version current version number, set by the linker
	Version = "undefined"
	// BuildTime build time of the binary, set by the linker
	BuildTime = "undefined"
)
