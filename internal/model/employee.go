package model

import "time"

// Employee is a person who can own workstations and borrow assets.
type Employee struct {
	ID         int64     `json:"employeeID"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Username   string    `json:"username"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FullName returns "First Last".
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Employee statuses.
const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"
)

// EmployeeDepartments is the fixed list an employee's department is picked from.
var EmployeeDepartments = []string{
	"IT",
	"HR",
	"Finance",
	"Operations",
	"Sales",
	"Marketing",
	"Admin",
	"Engineering",
}
