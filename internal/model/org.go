package model

// Company is a legal entity departments belong to.
type Company struct {
	ID   int64  `json:"companyID"`
	Name string `json:"companyName"`
}

// Department optionally belongs to a company.
type Department struct {
	ID        int64  `json:"departmentID"`
	Name      string `json:"departmentName"`
	CompanyID *int64 `json:"companyID"`

	CompanyName string `json:"companyName,omitempty"`
}
