package pubsub

// Job is a unit of work for the worker pool: analyze one commit and persist
// the scan result.
type Job struct {
	ID          string
	CommitHash  string
	RepoURL     string
	PusherEmail string
}
