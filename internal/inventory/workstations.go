package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
	"github.com/erazemk/assetdesk/internal/validate"
)

// WorkstationInput creates a workstation. An empty ID takes the next free
// WSM code; an empty name takes the ID.
type WorkstationInput struct {
	ID         string `json:"workStationID" validate:"omitempty,workstation_code"`
	Name       string `json:"workStationName" validate:"max=100"`
	EmployeeID *int64 `json:"employeeID"`
}

// WorkstationUpdate edits a workstation. Moving a workstation that still
// has assets to another employee needs ConfirmTransfer.
type WorkstationUpdate struct {
	Name            string `json:"workStationName" validate:"required,max=100"`
	EmployeeID      *int64 `json:"employeeID"`
	ConfirmTransfer bool   `json:"confirmTransfer"`
}

func checkEmployee(ctx context.Context, q store.Querier, id *int64) error {
	if id == nil {
		return nil
	}
	emp, err := store.GetEmployee(ctx, q, *id)
	if err != nil {
		return err
	}
	if emp == nil {
		return apperr.NotFound("employee", *id)
	}
	return nil
}

// CreateWorkstation adds a workstation. Codes are unique regardless of case.
func (s *Service) CreateWorkstation(ctx context.Context, actor model.Actor, in WorkstationInput) (*model.Workstation, error) {
	in.ID = validate.NormalizeWorkstationID(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var created *model.Workstation
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkEmployee(ctx, tx, in.EmployeeID); err != nil {
			return err
		}
		id := in.ID
		if id == "" {
			next, err := store.NextWorkstationCode(ctx, tx)
			if err != nil {
				return err
			}
			id = next
		}
		name := in.Name
		if name == "" {
			name = id
		}
		var err error
		created, err = store.CreateWorkstation(ctx, tx, id, name, in.EmployeeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Activity.Record(ctx, actor, model.ActionCreate, "workstations", created.ID,
		fmt.Sprintf("Created workstation %s", created.ID))
	return created, nil
}

// UpdateWorkstation renames a workstation or changes its employee. Bound
// assets stay on the workstation and so follow it to the new employee.
func (s *Service) UpdateWorkstation(ctx context.Context, actor model.Actor, id string, in WorkstationUpdate) (*model.Workstation, error) {
	id = validate.NormalizeWorkstationID(id)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkEmployee(ctx, s.DB, in.EmployeeID); err != nil {
		return nil, err
	}

	before, err := store.GetWorkstation(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, apperr.NotFound("workstation", id)
	}

	if err := store.UpdateWorkstation(ctx, s.DB, id, in.Name, in.EmployeeID, in.ConfirmTransfer); err != nil {
		return nil, err
	}

	updated, err := s.GetWorkstation(ctx, id)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Updated workstation %s", id)
	if !sameOwner(before.EmployeeID, updated.EmployeeID) && before.AssetCount > 0 {
		desc = fmt.Sprintf("Transferred workstation %s with %d asset(s) to %s", id, before.AssetCount, ownerName(updated))
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "workstations", id, desc)
	return updated, nil
}

func sameOwner(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ownerName(w *model.Workstation) string {
	if w.EmployeeID == nil {
		return "nobody"
	}
	if w.EmployeeName != "" {
		return w.EmployeeName
	}
	return fmt.Sprintf("employee %d", *w.EmployeeID)
}

// DeleteWorkstation deletes a workstation with no assets bound to it.
func (s *Service) DeleteWorkstation(ctx context.Context, actor model.Actor, id string) error {
	id = validate.NormalizeWorkstationID(id)
	if err := store.DeleteWorkstation(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "workstations", id,
		fmt.Sprintf("Deleted workstation %s", id))
	return nil
}

// GetWorkstation returns one workstation.
func (s *Service) GetWorkstation(ctx context.Context, id string) (*model.Workstation, error) {
	id = validate.NormalizeWorkstationID(id)
	w, err := store.GetWorkstation(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperr.NotFound("workstation", id)
	}
	return w, nil
}

// ListWorkstations returns all workstations. It never creates any.
func (s *Service) ListWorkstations(ctx context.Context) ([]model.Workstation, error) {
	list, err := store.ListWorkstations(ctx, s.DB, 0)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Workstation{}
	}
	return list, nil
}

// EnsureDefaultWorkstation returns the employee's default workstation,
// creating it when missing. Concurrent callers get the same workstation.
func (s *Service) EnsureDefaultWorkstation(ctx context.Context, actor model.Actor, employeeID int64) (*model.Workstation, bool, error) {
	ws, created, err := store.EnsureDefaultWorkstation(ctx, s.DB, employeeID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.Activity.Record(ctx, actor, model.ActionCreate, "workstations", ws.ID,
			fmt.Sprintf("Created default workstation %s for %s", ws.ID, ws.Name))
	}
	return ws, created, nil
}

// WorkstationsForEmployee lists the employee's workstations. An employee
// without any gets a default one created first, so the result is never
// empty.
func (s *Service) WorkstationsForEmployee(ctx context.Context, actor model.Actor, employeeID int64) ([]model.Workstation, error) {
	emp, err := store.GetEmployee(ctx, s.DB, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apperr.NotFound("employee", employeeID)
	}

	list, err := store.ListWorkstations(ctx, s.DB, employeeID)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}

	ws, _, err := s.EnsureDefaultWorkstation(ctx, actor, employeeID)
	if err != nil {
		return nil, err
	}
	return []model.Workstation{*ws}, nil
}
