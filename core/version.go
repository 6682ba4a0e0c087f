package core

// Version is the application version, overridable at build time with
// -ldflags "-X github.com/dax8it/z-image-mps/core.Version=...".
var Version = "0.3.0-dev"
