package versions

// Latest is the version sentinel for components that track the remote default
// branch. A component is locked iff its version is anything else.
const Latest = "latest"

// Component is one entry in the versions document.
type Component struct {
	// Version is either the Latest sentinel or a concrete commit SHA/tag.
	Version string `json:"version"`

	// LockedVersion is the last explicitly locked commit SHA. It survives
	// unlocking; rollback targets it.
	LockedVersion string `json:"locked_version,omitempty"`

	// URL overrides the convention-based remote URL when set.
	URL string `json:"url,omitempty"`

	// Post-sync build steps, consumed by the build collaborator.
	NpmInstall bool `json:"npm_install"`
	NpmBuild   bool `json:"npm_build"`
}

// Locked reports whether the component is pinned to a specific commit.
func (c Component) Locked() bool {
	return c.Version != Latest
}

// Defaults returns the built-in component set. Callers receive a fresh map on
// every call and may mutate it freely.
func Defaults() map[string]Component {
	return map[string]Component{
		"webclient":         {Version: Latest, NpmInstall: true, NpmBuild: true},
		"container-agent":   {Version: Latest, NpmInstall: true},
		"webapi":            {Version: Latest},
		"wsrng-server":      {Version: Latest, NpmInstall: true},
		"session-manager":   {Version: Latest, NpmInstall: true},
		"emu-webapp-server": {Version: Latest, NpmInstall: true},
		"EMU-webApp": {
			Version:    Latest,
			URL:        "https://github.com/humlab-speech/EMU-webApp.git",
			NpmInstall: true,
			NpmBuild:   true,
		},
	}
}
