// Package autostart registers the agent to start at boot. On macOS this is
// a launchd job; other platforms report unsupported.
package autostart

// Mode determines whether the job is installed system-wide or per-user.
// powermetrics needs root, so SystemMode gives the full probe set; UserMode
// runs with the fallback estimators.
type Mode int

const (
	SystemMode Mode = iota
	UserMode
)

// Manager installs and removes the boot-time job.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	ServiceName() string
}
