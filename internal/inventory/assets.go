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

// AssetInput is the editable part of an asset. The workstation binding is
// not part of it; it changes only through Assign and Unassign.
type AssetInput struct {
	Name             string  `json:"assetName" validate:"max=200"`
	Tag              string  `json:"assetTag" validate:"required,max=100"`
	SerialNumber     string  `json:"serialNumber" validate:"max=200"`
	ModelID          int64   `json:"modelID" validate:"required,gt=0"`
	Status           string  `json:"assetStatus" validate:"omitempty,asset_status"`
	ImagePath        string  `json:"imagePath"`
	IsBorrowed       bool    `json:"isBorrowed"`
	BorrowEmployeeID *int64  `json:"borrowEmployeeID"`
	BorrowStartDate  *string `json:"borrowStartDate"`
	BorrowEndDate    *string `json:"borrowEndDate"`
}

func (in *AssetInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Tag = strings.TrimSpace(in.Tag)
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	if !in.IsBorrowed {
		in.BorrowEmployeeID, in.BorrowStartDate, in.BorrowEndDate = nil, nil, nil
	}
}

func (s *Service) validateAsset(in *AssetInput) error {
	in.normalize()
	extra := &apperr.ValidationError{}
	validate.Borrow(extra, in.IsBorrowed, in.BorrowEmployeeID, in.BorrowStartDate, in.BorrowEndDate)
	if in.ImagePath != "" && s.Images != nil && !s.Images.Exists(in.ImagePath) {
		extra.Add("imagePath", "imagePath does not reference an uploaded image")
	}
	return validate.Merge(validate.Struct(in), extra)
}

// resolveAssetRefs loads the model and, when borrowed, the borrowing
// employee. It returns the category the asset must carry.
func resolveAssetRefs(ctx context.Context, q store.Querier, in *AssetInput) (int64, error) {
	m, err := store.GetModel(ctx, q, in.ModelID)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 0, apperr.NotFound("model", in.ModelID)
	}

	if in.IsBorrowed {
		emp, err := store.GetEmployee(ctx, q, *in.BorrowEmployeeID)
		if err != nil {
			return 0, err
		}
		if emp == nil {
			return 0, apperr.NotFound("employee", *in.BorrowEmployeeID)
		}
	}
	return m.CategoryID, nil
}

// CreateAsset adds an unassigned asset. Its category is taken from the
// model and its status defaults to Ready to Deploy.
func (s *Service) CreateAsset(ctx context.Context, actor model.Actor, in AssetInput) (*model.Asset, error) {
	if err := s.validateAsset(&in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.StatusReadyToDeploy
	}

	var created *model.Asset
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		categoryID, err := resolveAssetRefs(ctx, tx, &in)
		if err != nil {
			return err
		}
		created, err = store.CreateAsset(ctx, tx, &model.Asset{
			Name:             in.Name,
			Tag:              in.Tag,
			SerialNumber:     in.SerialNumber,
			ModelID:          in.ModelID,
			CategoryID:       categoryID,
			Status:           in.Status,
			ImagePath:        in.ImagePath,
			IsBorrowed:       in.IsBorrowed,
			BorrowEmployeeID: in.BorrowEmployeeID,
			BorrowStartDate:  in.BorrowStartDate,
			BorrowEndDate:    in.BorrowEndDate,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Activity.Record(ctx, actor, model.ActionCreate, "assets", created.ID,
		fmt.Sprintf("Created asset %s", created.Tag))
	return created, nil
}

// UpdateAsset replaces the editable fields of an asset. A changed model
// re-derives the category. A replaced or cleared image is removed from
// storage after the change commits.
func (s *Service) UpdateAsset(ctx context.Context, actor model.Actor, id int64, in AssetInput) (*model.Asset, error) {
	if err := s.validateAsset(&in); err != nil {
		return nil, err
	}

	var updated *model.Asset
	var oldImage string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := store.GetAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("asset", id)
		}
		categoryID, err := resolveAssetRefs(ctx, tx, &in)
		if err != nil {
			return err
		}

		next := *current
		next.Name = in.Name
		next.Tag = in.Tag
		next.SerialNumber = in.SerialNumber
		next.ModelID = in.ModelID
		next.CategoryID = categoryID
		if in.Status != "" {
			next.Status = in.Status
		}
		next.ImagePath = in.ImagePath
		next.IsBorrowed = in.IsBorrowed
		next.BorrowEmployeeID = in.BorrowEmployeeID
		next.BorrowStartDate = in.BorrowStartDate
		next.BorrowEndDate = in.BorrowEndDate

		if err := store.UpdateAsset(ctx, tx, &next); err != nil {
			return err
		}
		if current.ImagePath != next.ImagePath {
			oldImage = current.ImagePath
		}
		updated, err = store.GetAsset(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.removeImage(ctx, oldImage)
	s.Activity.Record(ctx, actor, model.ActionUpdate, "assets", id,
		fmt.Sprintf("Updated asset %s", updated.Tag))
	return updated, nil
}

// SetAssetImage points an existing asset at an uploaded image.
func (s *Service) SetAssetImage(ctx context.Context, actor model.Actor, id int64, image string) (*model.Asset, error) {
	if s.Images != nil && image != "" && !s.Images.Exists(image) {
		return nil, apperr.Invalid("imagePath", "imagePath does not reference an uploaded image")
	}

	var updated *model.Asset
	var oldImage string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := store.GetAsset(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("asset", id)
		}
		if err := store.SetAssetImage(ctx, tx, id, image); err != nil {
			return err
		}
		if current.ImagePath != image {
			oldImage = current.ImagePath
		}
		updated, err = store.GetAsset(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.removeImage(ctx, oldImage)
	s.Activity.Record(ctx, actor, model.ActionUpdate, "assets", id,
		fmt.Sprintf("Changed image of asset %s", updated.Tag))
	return updated, nil
}

// GetAsset returns one asset.
func (s *Service) GetAsset(ctx context.Context, id int64) (*model.Asset, error) {
	a, err := store.GetAsset(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("asset", id)
	}
	return a, nil
}

// ListAssets returns the assets matching f.
func (s *Service) ListAssets(ctx context.Context, f store.AssetFilter) ([]model.Asset, error) {
	f.WorkstationID = validate.NormalizeWorkstationID(f.WorkstationID)
	if f.Status != "" && !model.ValidAssetStatus(f.Status) {
		return nil, apperr.Invalid("status", "status must be one of: "+strings.Join(model.AssetStatuses, ", "))
	}
	assets, err := store.ListAssets(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	return assets, nil
}

// DeleteAsset deletes an unassigned asset.
func (s *Service) DeleteAsset(ctx context.Context, actor model.Actor, id int64) error {
	_, err := s.DeleteAssets(ctx, actor, BatchRequest{AssetIDs: []int64{id}})
	return err
}

// BatchRequest names the assets of a bulk operation. A batch holds at most
// 1000 assets.
type BatchRequest struct {
	AssetIDs []int64 `json:"assetIds" validate:"required,min=1,max=1000,dive,gt=0"`
}

// DeleteAssets deletes every listed asset, or none of them when any is
// still assigned. It returns the number of deleted assets.
func (s *Service) DeleteAssets(ctx context.Context, actor model.Actor, req BatchRequest) (int, error) {
	if err := validate.Struct(req); err != nil {
		return 0, err
	}

	deleted, err := store.DeleteAssets(ctx, s.DB, uniqueIDs(req.AssetIDs))
	if err != nil {
		return 0, err
	}

	for _, a := range deleted {
		s.removeImage(ctx, a.ImagePath)
		s.Activity.Record(ctx, actor, model.ActionDelete, "assets", a.ID,
			fmt.Sprintf("Deleted asset %s", a.Tag))
	}
	return len(deleted), nil
}

// AssignRequest binds assets to a workstation with an in-service status.
type AssignRequest struct {
	AssetIDs      []int64 `json:"assetIds" validate:"required,min=1,max=1000,dive,gt=0"`
	WorkstationID string  `json:"workStationID" validate:"required,workstation_code"`
	Status        string  `json:"assetStatus" validate:"required,assign_status"`
}

// Assign binds every listed asset to the workstation. If any of them is
// already assigned the batch is rejected with a ConflictError listing those
// assets, and no asset changes.
func (s *Service) Assign(ctx context.Context, actor model.Actor, req AssignRequest) ([]model.Asset, error) {
	req.WorkstationID = validate.NormalizeWorkstationID(req.WorkstationID)
	req.Status = strings.TrimSpace(req.Status)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	ids := uniqueIDs(req.AssetIDs)

	if err := store.AssignAssets(ctx, s.DB, ids, req.WorkstationID, req.Status); err != nil {
		return nil, err
	}

	assets := make([]model.Asset, 0, len(ids))
	for _, id := range ids {
		s.Activity.Record(ctx, actor, model.ActionUpdate, "assets", id,
			fmt.Sprintf("Assigned to workstation %s as %s", req.WorkstationID, req.Status))
		a, err := store.GetAsset(ctx, s.DB, id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			assets = append(assets, *a)
		}
	}
	return assets, nil
}

// Unassign returns the listed assets to the pool. In-service statuses fall
// back to Ready to Deploy. Assets that are already unassigned are left as
// they are, so repeating the call changes nothing. It returns how many
// assets were unbound.
func (s *Service) Unassign(ctx context.Context, actor model.Actor, req BatchRequest) (int64, error) {
	if err := validate.Struct(req); err != nil {
		return 0, err
	}
	ids := uniqueIDs(req.AssetIDs)

	before := make(map[int64]string, len(ids))
	for _, id := range ids {
		a, err := store.GetAsset(ctx, s.DB, id)
		if err != nil {
			return 0, err
		}
		if a != nil && a.WorkstationID != nil {
			before[id] = *a.WorkstationID
		}
	}

	n, err := store.UnassignAssets(ctx, s.DB, ids)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if ws, ok := before[id]; ok {
			s.Activity.Record(ctx, actor, model.ActionUpdate, "assets", id,
				fmt.Sprintf("Unassigned from workstation %s", ws))
		}
	}
	return n, nil
}
