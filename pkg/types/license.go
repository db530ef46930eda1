package types

type LicenseStatus string

const (
	LicenseStatusPending    LicenseStatus = "PENDING"
	LicenseStatusActive     LicenseStatus = "ACTIVE"
	LicenseStatusExpired    LicenseStatus = "EXPIRED"
	LicenseStatusTerminated LicenseStatus = "TERMINATED"
)

type DeploymentStatus string

const (
	DeploymentStatusPlanned    DeploymentStatus = "PLANNED"
	DeploymentStatusInProgress DeploymentStatus = "IN_PROGRESS"
	DeploymentStatusCompleted  DeploymentStatus = "COMPLETED"
	DeploymentStatusFailed     DeploymentStatus = "FAILED"
)

func (s DeploymentStatus) Valid() bool {
	switch s {
	case DeploymentStatusPlanned, DeploymentStatusInProgress, DeploymentStatusCompleted, DeploymentStatusFailed:
		return true
	}
	return false
}

type ActivationMode string

const (
	ActivationModeOnline  ActivationMode = "ONLINE"
	ActivationModeOffline ActivationMode = "OFFLINE"
)

func (m ActivationMode) Valid() bool {
	return m == ActivationModeOnline || m == ActivationModeOffline
}
