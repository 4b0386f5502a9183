package entities

type DeploymentStatus string

const (
	DeploymentStatusPending    DeploymentStatus = "Pending"
	DeploymentStatusInProgress DeploymentStatus = "InProgress"
	DeploymentStatusSucceeded  DeploymentStatus = "Succeeded"
	DeploymentStatusRejected   DeploymentStatus = "Rejected"
	DeploymentStatusFailed     DeploymentStatus = "Failed"
)

// IsTerminal reports whether a deployment can no longer change state.
func (s DeploymentStatus) IsTerminal() bool {
	switch s {
	case DeploymentStatusSucceeded, DeploymentStatusRejected, DeploymentStatusFailed:
		return true
	}
	return false
}

const (
	RoundInitial  = 1
	RoundRevision = 2
)

// NotificationStatus values carried by failure payloads.
const (
	NotificationStatusFailed = "failed"
)
