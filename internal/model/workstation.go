package model

import "time"

// Workstation is a desk or seat that assets and an employee can be bound to.
// ID is the human-readable code (WSM followed by digits, uppercase).
type Workstation struct {
	ID         string    `json:"workStationID"`
	Name       string    `json:"workStationName"`
	EmployeeID *int64    `json:"employeeID"`
	IsDefault  bool      `json:"isDefault"`
	AssetCount int       `json:"assetCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	EmployeeName string `json:"employeeName,omitempty"`
}

// WorkstationPrefix starts every workstation code.
const WorkstationPrefix = "WSM"
