package version

// Version is stamped at build time with -ldflags "-X torrenter/internal/version.Version=v1.2.3".
var Version = "v0.0.0-dev"
