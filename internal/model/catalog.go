package model

// AssetModel is a manufacturer-specific product type an asset instantiates.
type AssetModel struct {
	ID             int64  `json:"modelID"`
	Name           string `json:"modelName"`
	ManufacturerID int64  `json:"manufacturerID"`
	CategoryID     int64  `json:"categoryID"`
	Count          int    `json:"modelCount"`

	ManufacturerName string `json:"manufacturerName,omitempty"`
	CategoryName     string `json:"categoryName,omitempty"`
}

// Category groups models (laptops, monitors, ...).
type Category struct {
	ID    int64  `json:"categoryID"`
	Name  string `json:"categoryName"`
	Type  string `json:"categoryType,omitempty"`
	Count int    `json:"categoryCount"`
}

// Manufacturer makes models.
type Manufacturer struct {
	ID    int64  `json:"manufacturerID"`
	Name  string `json:"manufacturerName"`
	Count int    `json:"manufacturerCount"`
}
