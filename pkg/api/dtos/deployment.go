package dtos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

// RequiredFields lists the keys a deploy request must carry, in the order
// they are reported when missing.
var RequiredFields = []string{"email", "secret", "task", "round", "nonce", "brief", "evaluation_url"}

type AttachmentRequest struct {
	Name string `json:"name" example:"data.csv"`
	URL  string `json:"url"  example:"data:text/csv;base64,cHJvZHVjdCxzYWxlcwo="`
}

type DeployRequest struct {
	Email         string              `json:"email"          example:"student@example.com"`
	Secret        string              `json:"secret"`
	Task          string              `json:"task"           example:"sum-of-sales-1"`
	Round         int                 `json:"round"          example:"1"`
	Nonce         string              `json:"nonce"          example:"ab12-cd34"`
	Brief         string              `json:"brief"          example:"Publish a page that shows the sum of sales"`
	Checks        []string            `json:"checks"`
	Attachments   []AttachmentRequest `json:"attachments"`
	EvaluationURL string              `json:"evaluation_url" example:"https://example.com/notify"`
}

// ValidationError is returned for requests the gateway rejects with 400.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseDeployRequest checks the body in order: non-empty JSON object, every
// required key present, then field types and values.
func ParseDeployRequest(body []byte) (*DeployRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ValidationError{Message: "No JSON data received"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Message: "Invalid JSON: request body must be a JSON object"}
	}
	if len(raw) == 0 {
		return nil, &ValidationError{Message: "No JSON data received"}
	}

	missing := make([]string, 0, len(RequiredFields))
	for _, field := range RequiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message:       fmt.Sprintf("Missing required fields: [%s]", strings.Join(missing, ", ")),
			MissingFields: missing,
		}
	}

	var req DeployRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &ValidationError{Message: fmt.Sprintf("Invalid type for field %s: expected %s", typeErr.Field, typeErr.Type)}
		}
		return nil, &ValidationError{Message: "Invalid JSON: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *DeployRequest) Validate() error {
	if r.Round != entities.RoundInitial && r.Round != entities.RoundRevision {
		return &ValidationError{Message: fmt.Sprintf("Invalid round %d: must be 1 or 2", r.Round)}
	}
	u, err := url.Parse(r.EvaluationURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Message: "Invalid evaluation_url: must be an absolute http(s) URL"}
	}
	return nil
}

func (r *DeployRequest) ToEntity() *entities.DeploymentRequest {
	attachments := make([]entities.Attachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		attachments = append(attachments, entities.Attachment{Name: a.Name, URL: a.URL})
	}
	checks := r.Checks
	if checks == nil {
		checks = []string{}
	}
	return &entities.DeploymentRequest{
		Email:         r.Email,
		Secret:        r.Secret,
		Task:          r.Task,
		Round:         r.Round,
		Nonce:         r.Nonce,
		Brief:         r.Brief,
		Checks:        checks,
		Attachments:   attachments,
		EvaluationURL: r.EvaluationURL,
	}
}

type DeployResponse struct {
	Status       string    `json:"status"        example:"accepted"`
	Message      string    `json:"message"       example:"Deployment process started"`
	Round        int       `json:"round"         example:"1"`
	Task         string    `json:"task"          example:"sum-of-sales-1"`
	DeploymentID uuid.UUID `json:"deployment_id"`
}

type ErrorResponse struct {
	Status        string   `json:"status"                   example:"error"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

type HealthResponse struct {
	Status    string   `json:"status"    example:"healthy"`
	Service   string   `json:"service"   example:"pages-deployer"`
	Version   string   `json:"version"   example:"2.1"`
	Timestamp float64  `json:"timestamp"`
	Features  []string `json:"features"`
}

type DebugResponse struct {
	HostBackend      string `json:"host_backend"`
	HostConnected    bool   `json:"github_connected"`
	HostUser         string `json:"github_user,omitempty"`
	SecretConfigured bool   `json:"secret_configured"`
	Port             string `json:"port"`
	Service          string `json:"service"`
	StoreBackend     string `json:"store_backend"`
	Workers          int    `json:"workers"`
	QueueSize        int    `json:"queue_size"`
	Pending          int    `json:"pending"`
	NotifyOnFailure  bool   `json:"notify_on_failure"`
}

// TaskRecordResponse describes a task record without file contents.
type TaskRecordResponse struct {
	Task      string    `json:"task"`
	Round     int       `json:"round"`
	Template  string    `json:"template"`
	RepoName  string    `json:"repo_name"`
	RepoURL   string    `json:"repo_url"`
	PagesURL  string    `json:"pages_url"`
	CommitSHA string    `json:"commit_sha"`
	Files     []string  `json:"files"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTaskRecordResponse(rec *entities.TaskRecord) TaskRecordResponse {
	return TaskRecordResponse{
		Task:      rec.Task,
		Round:     rec.Round,
		Template:  rec.Template,
		RepoName:  rec.RepoName,
		RepoURL:   rec.RepoURL,
		PagesURL:  rec.PagesURL,
		CommitSHA: rec.CommitSHA,
		Files:     rec.Files.CommitOrder(),
		UpdatedAt: rec.UpdatedAt,
	}
}
