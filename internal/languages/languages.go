package languages

import "errors"

// ErrUnsupportedLanguage indicates the requested language is not in the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Runtime describes how to compile and run a submission for one language.
// Commands are argument vectors, never shell strings, and are executed inside
// the sandbox container with the submission workspace as working directory.
type Runtime struct {
	ID         string
	Name       string
	Image      string
	FileName   string
	CompileCmd []string
	RunCmd     []string
}

// Compiled reports whether the runtime needs a compile pass before running.
func (r Runtime) Compiled() bool {
	return len(r.CompileCmd) > 0
}

// The supported set is fixed. Callers must reject anything else before
// touching the sandbox.
var runtimes = map[string]Runtime{
	"python": {
		ID:       "python",
		Name:     "Python",
		Image:    "python:3.11-alpine",
		FileName: "main.py",
		RunCmd:   []string{"python", "main.py"},
	},
	"javascript": {
		ID:       "javascript",
		Name:     "JavaScript",
		Image:    "node:20-alpine",
		FileName: "main.js",
		RunCmd:   []string{"node", "main.js"},
	},
	"java": {
		ID:         "java",
		Name:       "Java",
		Image:      "eclipse-temurin:21-jdk-alpine",
		FileName:   "Main.java",
		CompileCmd: []string{"javac", "Main.java"},
		RunCmd:     []string{"java", "Main"},
	},
	"cpp": {
		ID:         "cpp",
		Name:       "C++",
		Image:      "gcc:13",
		FileName:   "main.cpp",
		CompileCmd: []string{"g++", "-O2", "-o", "main", "main.cpp"},
		RunCmd:     []string{"./main"},
	},
}

var order = []string{"python", "javascript", "java", "cpp"}

// Get returns the runtime for the given language identifier.
func Get(id string) (Runtime, error) {
	runtime, ok := runtimes[id]
	if !ok {
		return Runtime{}, ErrUnsupportedLanguage
	}
	return runtime, nil
}

// Supported reports whether the language identifier is in the supported set.
func Supported(id string) bool {
	_, ok := runtimes[id]
	return ok
}

// List returns the supported runtimes in a stable order.
func List() []Runtime {
	result := make([]Runtime, 0, len(order))
	for _, id := range order {
		result = append(result, runtimes[id])
	}
	return result
}
