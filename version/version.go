package version

// This package is used to store the version information
// for the distribution of the tooling this package is part of

var (
	// GitHash is filled in by the build using the go linker
	GitHash = "unknown"
	// BuildTime is filled in by the build using the go linker
	BuildTime = "unknown"
)
