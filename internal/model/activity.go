package model

import "time"

// ActivityLog is an immutable audit record of one mutation.
type ActivityLog struct {
	ID          int64     `json:"logID"`
	Action      string    `json:"actionType"`
	TableName   string    `json:"tableName"`
	RecordID    string    `json:"recordID"`
	PerformedBy string    `json:"performedBy"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Activity actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Actor identifies who performs an operation. It is passed explicitly into
// every mutating call; nothing reads the caller identity from ambient state.
type Actor struct {
	UserID   int64
	Username string
}

// SystemActor is used by the CLI and startup tasks.
var SystemActor = Actor{Username: "system"}

// Backup describes one archive file.
type Backup struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
