package model

import "time"

// Asset is an individually tracked physical item.
type Asset struct {
	ID               int64     `json:"assetID"`
	Name             string    `json:"assetName,omitempty"`
	Tag              string    `json:"assetTag"`
	SerialNumber     string    `json:"serialNumber,omitempty"`
	ModelID          int64     `json:"modelID"`
	CategoryID       int64     `json:"categoryID"`
	Status           string    `json:"assetStatus"`
	ImagePath        string    `json:"imagePath,omitempty"`
	WorkstationID    *string   `json:"workStationID"`
	IsBorrowed       bool      `json:"isBorrowed"`
	BorrowEmployeeID *int64    `json:"borrowEmployeeID"`
	BorrowStartDate  *string   `json:"borrowStartDate"`
	BorrowEndDate    *string   `json:"borrowEndDate"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Joined fields (not always populated).
	ModelName    string `json:"modelName,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
}

// Assigned reports whether the asset is bound to a workstation.
func (a *Asset) Assigned() bool {
	return a.WorkstationID != nil
}

// DisplayName returns the asset name, falling back to its tag.
func (a *Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Tag
}

// Asset statuses.
const (
	StatusReadyToDeploy       = "Ready to Deploy"
	StatusOnsite              = "Onsite"
	StatusWFH                 = "WFH"
	StatusTemporarilyDeployed = "Temporarily Deployed"
	StatusBorrowed            = "Borrowed"
	StatusDefective           = "Defective"
)

// AssetStatuses lists every valid asset status.
var AssetStatuses = []string{
	StatusReadyToDeploy,
	StatusOnsite,
	StatusWFH,
	StatusTemporarilyDeployed,
	StatusBorrowed,
	StatusDefective,
}

// ValidAssetStatus checks s against AssetStatuses.
func ValidAssetStatus(s string) bool {
	for _, v := range AssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InServiceStatus reports whether s is one of the statuses an asset takes
// when it is assigned to a workstation.
func InServiceStatus(s string) bool {
	return s == StatusOnsite || s == StatusWFH || s == StatusTemporarilyDeployed
}
