package config

import "time"

// SourceFileExtensions are all recognized command file extensions
var SourceFileExtensions = []string{".yaml", ".yml"}

// AnonymousParamName is the parameter name used when a lambda type's input
// is not a struct. A lambda with a single parameter of this name converts
// to LambdaT{Input: paramType} instead of LambdaT{Input: StructT{...}}.
const AnonymousParamName = "_"

// Defaults for evaluation budgets.
const (
	// DefaultMaxDepth matches the nesting limit of the tree-walking evaluator.
	DefaultMaxDepth = 10000
	DefaultMaxSteps = 1000000
	DefaultTimeout  = 10 * time.Second
)

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DefaultDSN keeps the command log in memory unless a file is configured.
const DefaultDSN = ":memory:"

// Default session identity used by the CLI.
const (
	DefaultChannel = "local"
	DefaultUser    = "anonymous"
)
