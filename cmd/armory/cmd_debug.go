package main

// The debug command itself is a plain container; its sub-commands are
// registered via addDebugCommand.
type cmdDebug struct{}

var shortDebugHelp = "Run debug commands"
var longDebugHelp = `
The debug command contains a selection of additional sub-commands.

Debug commands can be removed without notice and may not work on
non-development systems.
`
