package config

import "strings"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".vela", ".vl"}

// CompiledFileExt is the extension of serialized chunk files
const CompiledFileExt = ".vbc"

// VM limits
const (
	// DefaultStackMax is the operand stack capacity when no setting overrides it
	DefaultStackMax = 256

	// MaxShortConstant is the largest pool index encoded in one operand byte
	MaxShortConstant = 0xFF

	// MaxLongConstant is the largest pool index encoded in three operand bytes
	MaxLongConstant = 0xFFFFFF

	// InitialArrayCapacity is the first allocation for code, constants and line runs
	InitialArrayCapacity = 8
)

// Process exit codes used by the command-line entry point
const (
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// Environment variables
const (
	EnvConfig = "VELA_CONFIG"
	EnvTrace  = "VELA_TRACE"
	EnvDebug  = "DEBUG"
)

// TrimSourceExt removes a recognized source extension from path
func TrimSourceExt(path string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
