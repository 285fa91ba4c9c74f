package cache

import "time"

// Entry represents a recorded pipeline run
type Entry struct {
	// Hash is the unique identifier for this cache entry, see Key.Hash
	Hash string `json:"hash"`

	// RunID identifies the run that wrote the entry
	RunID string `json:"run_id"`

	Repository string `json:"repository"`
	Ref        string `json:"ref,omitempty"`
	BuildType  string `json:"build_type"`

	ConfigureArgs []string          `json:"configure_args"`
	BuildArgs     []string          `json:"build_args"`
	ToolVersions  map[string]string `json:"tool_versions"`

	// Timestamp when this entry was created
	Timestamp time.Time `json:"timestamp"`

	// Collected artifact counts
	Libraries int `json:"libraries"`
	Headers   int `json:"headers"`
	Wrappers  int `json:"wrappers"`

	// BindingHash is the sha256 of the generated binding file
	BindingHash string `json:"binding_hash,omitempty"`

	// Success indicates if the external build was successful
	Success bool `json:"success"`
}
