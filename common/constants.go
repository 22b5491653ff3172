package common

// Version is overwritten at build time with -ldflags "-X ...common.Version=...".
var Version = "v0.0.0-dev"

// Banner is the plain-text body served on the root route.
const Banner = "Tsiolkovsky API"
