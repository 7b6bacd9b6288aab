package inventory

import (
	"context"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
	"github.com/erazemk/assetdesk/internal/validate"
)

// EmployeeInput creates or edits an employee. Status defaults to active.
type EmployeeInput struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Username   string `json:"username" validate:"required,max=100"`
	Department string `json:"department" validate:"required,department"`
	Status     string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (in *EmployeeInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Department = strings.TrimSpace(in.Department)
	if in.Status == "" {
		in.Status = model.EmployeeActive
	}
}

func (in *EmployeeInput) employee() *model.Employee {
	return &model.Employee{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Username:   in.Username,
		Department: in.Department,
		Status:     in.Status,
	}
}

// CreateEmployee adds an employee.
func (s *Service) CreateEmployee(ctx context.Context, actor model.Actor, in EmployeeInput) (*model.Employee, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	e, err := store.CreateEmployee(ctx, s.DB, in.employee())
	if err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionCreate, "employees", e.ID, "Created employee "+e.FullName())
	return e, nil
}

// UpdateEmployee replaces the editable fields of an employee.
func (s *Service) UpdateEmployee(ctx context.Context, actor model.Actor, id int64, in EmployeeInput) (*model.Employee, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetEmployee(ctx, id); err != nil {
		return nil, err
	}

	e := in.employee()
	e.ID = id
	if err := store.UpdateEmployee(ctx, s.DB, e); err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "employees", id, "Updated employee "+e.FullName())
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee deletes an employee who owns no workstation and borrows
// no asset.
func (s *Service) DeleteEmployee(ctx context.Context, actor model.Actor, id int64) error {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteEmployee(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "employees", id, "Deleted employee "+e.FullName())
	return nil
}

// GetEmployee returns one employee.
func (s *Service) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	e, err := store.GetEmployee(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFound("employee", id)
	}
	return e, nil
}

// ListEmployees returns employees, optionally filtered by status and
// department.
func (s *Service) ListEmployees(ctx context.Context, status, department string) ([]model.Employee, error) {
	list, err := store.ListEmployees(ctx, s.DB, status, department)
	if list == nil && err == nil {
		list = []model.Employee{}
	}
	return list, err
}
