package config

import "strings"

// schemaEntry is one recognized-config-type annotation: a human
// description plus a short category tag, keyed by a single key-path
// segment.
type schemaEntry struct {
	recognizedType string
	description    string
}

// knownKeys is the static schema table recognized config keys are
// checked against so entries get human descriptions. A key path matches
// when its last segment or, failing that, its first segment is a key
// here (so "dependencies.react" matches the "dependencies" entry through
// its first segment).
var knownKeys = map[string]schemaEntry{
	"name":            {"package-name", "package or project name"},
	"version":         {"semver", "semantic version string"},
	"description":     {"text", "human-readable summary"},
	"main":            {"entry-point", "package entry-point module"},
	"scripts":         {"script-map", "named shell commands run via the package manager"},
	"dependencies":    {"dependency-map", "runtime dependency versions"},
	"devDependencies": {"dependency-map", "development-only dependency versions"},
	"peerDependencies": {"dependency-map", "dependency versions expected from the consumer"},
	"license":         {"license-id", "SPDX license identifier"},
	"private":         {"flag", "excludes the package from publishing"},
	"engines":         {"engine-constraint", "required runtime version range"},
	"compilerOptions": {"tsconfig-section", "TypeScript compiler configuration"},
	"include":         {"glob-list", "files included in this build/config scope"},
	"exclude":         {"glob-list", "files excluded from this build/config scope"},
	"module":          {"go-module-path", "Go module import path"},
	"go":              {"go-version", "minimum Go toolchain version"},
	"require":         {"dependency-map", "declared module requirements"},
}

// recognizedConfigFiles maps well-known filenames to a format label. It
// is not consulted by lookupSchema or by parsing, which is
// extension-driven.
var recognizedConfigFiles = map[string]string{
	"package.json":    "npm package manifest",
	"tsconfig.json":   "TypeScript compiler configuration",
	"go.mod":          "Go module file",
	"pyproject.toml":  "Python project configuration",
	"Cargo.toml":      "Rust package manifest",
	"docker-compose.yml":  "Docker Compose service definition",
	"docker-compose.yaml": "Docker Compose service definition",
}

// lookupSchema resolves the recognized type/description for one dotted key
// path, trying the leaf segment and then the first segment.
func lookupSchema(fileName, keyPath string) (string, string) {
	segments := strings.Split(keyPath, ".")
	leaf := segments[len(segments)-1]
	if e, ok := knownKeys[leaf]; ok {
		return e.recognizedType, e.description
	}
	if e, ok := knownKeys[segments[0]]; ok {
		return e.recognizedType, e.description
	}
	return "", ""
}
