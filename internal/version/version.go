// Package version reports the build the console binary was produced from.
package version

// Values for these are injected by the build
var (
	version string
	commit  string
)

// Version returns the console version. This is typically a semantic version,
// but for unreleased code it may be another descriptor such as "devel".
func Version() string {
	if version == "" {
		return "devel"
	}
	return version
}

// Commit returns the git commit SHA the console was built from, or "unknown".
func Commit() string {
	if commit == "" {
		return "unknown"
	}
	return commit
}
