package entities

import "time"

type Task func()

// TaskRecord is what survives a round 1 deployment so that round 2 can update
// the same repository instead of creating an unrelated one.
type TaskRecord struct {
	Task      string    `json:"task"`
	Round     int       `json:"round"`
	Template  string    `json:"template"`
	RepoName  string    `json:"repo_name"`
	RepoURL   string    `json:"repo_url"`
	PagesURL  string    `json:"pages_url"`
	CommitSHA string    `json:"commit_sha"`
	Files     FileSet   `json:"files,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
