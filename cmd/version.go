package cmd

// Version will be overwritten at build time via -ldflags.
var Version = "unknown"
