package entities

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type DeploymentRequest struct {
	Email         string
	Secret        string
	Task          string
	Round         int
	Nonce         string
	Brief         string
	Checks        []string
	Attachments   []Attachment
	EvaluationURL string
}

// DeploymentResult is the payload posted to the evaluation URL. Status and
// Error are only set on failure notifications.
type DeploymentResult struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewDeploymentResult(req *DeploymentRequest) *DeploymentResult {
	return &DeploymentResult{
		Email: req.Email,
		Task:  req.Task,
		Round: req.Round,
		Nonce: req.Nonce,
	}
}

type DeploymentEntity struct {
	ID        uuid.UUID        `json:"id"`
	Task      string           `json:"task"`
	Round     int              `json:"round"`
	Nonce     string           `json:"nonce"`
	Email     string           `json:"email"`
	Template  string           `json:"template"`
	Status    DeploymentStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	RepoName  string           `json:"repo_name,omitempty"`
	RepoURL   string           `json:"repo_url,omitempty"`
	PagesURL  string           `json:"pages_url,omitempty"`
	CommitSHA string           `json:"commit_sha,omitempty"`
	Notified  bool             `json:"notified"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	DefaultBranch string `json:"default_branch"`
}
