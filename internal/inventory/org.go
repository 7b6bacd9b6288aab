package inventory

import (
	"context"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
	"github.com/erazemk/assetdesk/internal/validate"
)

// CompanyInput creates or edits a company.
type CompanyInput struct {
	Name string `json:"companyName" validate:"required,max=100"`
}

// DepartmentInput creates or edits a department.
type DepartmentInput struct {
	Name      string `json:"departmentName" validate:"required,max=100"`
	CompanyID *int64 `json:"companyID"`
}

// CreateCompany adds a company.
func (s *Service) CreateCompany(ctx context.Context, actor model.Actor, in CompanyInput) (*model.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := store.CreateCompany(ctx, s.DB, in.Name)
	if err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionCreate, "companies", c.ID, "Created company "+c.Name)
	return c, nil
}

// UpdateCompany renames a company.
func (s *Service) UpdateCompany(ctx context.Context, actor model.Actor, id int64, in CompanyInput) (*model.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetCompany(ctx, id); err != nil {
		return nil, err
	}
	if err := store.UpdateCompany(ctx, s.DB, id, in.Name); err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "companies", id, "Updated company "+in.Name)
	return s.GetCompany(ctx, id)
}

// DeleteCompany deletes a company that has no departments.
func (s *Service) DeleteCompany(ctx context.Context, actor model.Actor, id int64) error {
	c, err := s.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteCompany(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "companies", id, "Deleted company "+c.Name)
	return nil
}

// GetCompany returns one company.
func (s *Service) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	c, err := store.GetCompany(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("company", id)
	}
	return c, nil
}

// ListCompanies returns every company ordered by name.
func (s *Service) ListCompanies(ctx context.Context) ([]model.Company, error) {
	list, err := store.ListCompanies(ctx, s.DB)
	if list == nil && err == nil {
		list = []model.Company{}
	}
	return list, err
}

func (s *Service) checkCompany(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.GetCompany(ctx, *id)
	return err
}

// CreateDepartment adds a department, optionally under a company.
func (s *Service) CreateDepartment(ctx context.Context, actor model.Actor, in DepartmentInput) (*model.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}
	d, err := store.CreateDepartment(ctx, s.DB, in.Name, in.CompanyID)
	if err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionCreate, "departments", d.ID, "Created department "+d.Name)
	return d, nil
}

// UpdateDepartment replaces the name and company of a department.
func (s *Service) UpdateDepartment(ctx context.Context, actor model.Actor, id int64, in DepartmentInput) (*model.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetDepartment(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}
	if err := store.UpdateDepartment(ctx, s.DB, id, in.Name, in.CompanyID); err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "departments", id, "Updated department "+in.Name)
	return s.GetDepartment(ctx, id)
}

// DeleteDepartment deletes a department.
func (s *Service) DeleteDepartment(ctx context.Context, actor model.Actor, id int64) error {
	d, err := s.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteDepartment(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "departments", id, "Deleted department "+d.Name)
	return nil
}

// GetDepartment returns one department.
func (s *Service) GetDepartment(ctx context.Context, id int64) (*model.Department, error) {
	d, err := store.GetDepartment(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("department", id)
	}
	return d, nil
}

// ListDepartments returns the departments of a company, or all of
// them when companyID is 0.
func (s *Service) ListDepartments(ctx context.Context, companyID int64) ([]model.Department, error) {
	list, err := store.ListDepartments(ctx, s.DB, companyID)
	if list == nil && err == nil {
		list = []model.Department{}
	}
	return list, err
}
