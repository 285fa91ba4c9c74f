package codes

// Process exit codes reported by cppbind
const (
	Success       = 0
	General       = 1
	Environment   = 2
	ExternalTool  = 3
	Emission      = 4
	Configuration = 5
	OutOfDate     = 6
)

// ExitCodes maps cppbind exit codes to their descriptions
var ExitCodes = map[int]string{
	Success:       "Success",
	General:       "General failure",
	Environment:   "Build environment not supported or tool too old",
	ExternalTool:  "External tool (git or CMake) failed",
	Emission:      "Cannot write generated bindings",
	Configuration: "Invalid configuration",
	OutOfDate:     "Generated bindings are out of date",
}

// IsSuccess returns true if the exit code indicates a completed run
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
