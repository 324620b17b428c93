// pkg/registry/schema.go
package registry

// StageRegistry is the machine-readable catalog of pipeline stages, used by
// tooling and the -stages flag of the planner.
type StageRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Stages      []Stage `json:"stages"`
}

type Stage struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	ErrorCodes  []string `json:"errorCodes,omitempty"`
	Timeout     string   `json:"timeout"`
	Retries     int      `json:"retries"`
	Tags        []string `json:"tags,omitempty"`
}
