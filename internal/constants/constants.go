package constants

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "ahkcheck.yaml"
)

// Diagnostic source identifiers and their merge priorities. Higher
// priority wins when two sources report the same location.
const (
	SourceInterpreter = "ahk"
	SourceStatic      = "static"

	PriorityInterpreter = 100
	PriorityStatic      = 10
)

// Exit codes for the validate command
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitRunError = 2
)
