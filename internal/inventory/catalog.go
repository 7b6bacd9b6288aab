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

// ManufacturerInput creates or edits a manufacturer.
type ManufacturerInput struct {
	Name  string `json:"manufacturerName" validate:"required,max=100"`
	Count int    `json:"manufacturerCount" validate:"gte=0"`
}

// CategoryInput creates or edits a category.
type CategoryInput struct {
	Name  string `json:"categoryName" validate:"required,max=100"`
	Type  string `json:"categoryType" validate:"max=100"`
	Count int    `json:"categoryCount" validate:"gte=0"`
}

// ModelInput creates or edits an asset model.
type ModelInput struct {
	Name           string `json:"modelName" validate:"required,max=100"`
	ManufacturerID int64  `json:"manufacturerID" validate:"required,gt=0"`
	CategoryID     int64  `json:"categoryID" validate:"required,gt=0"`
	Count          int    `json:"modelCount" validate:"gte=0"`
}

// CreateManufacturer adds a manufacturer.
func (s *Service) CreateManufacturer(ctx context.Context, actor model.Actor, in ManufacturerInput) (*model.Manufacturer, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	m, err := store.CreateManufacturer(ctx, s.DB, in.Name, in.Count)
	if err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionCreate, "manufacturers", m.ID, "Created manufacturer "+m.Name)
	return m, nil
}

// UpdateManufacturer replaces the name and count of a manufacturer.
func (s *Service) UpdateManufacturer(ctx context.Context, actor model.Actor, id int64, in ManufacturerInput) (*model.Manufacturer, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetManufacturer(ctx, id); err != nil {
		return nil, err
	}
	if err := store.UpdateManufacturer(ctx, s.DB, id, in.Name, in.Count); err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "manufacturers", id, "Updated manufacturer "+in.Name)
	return s.GetManufacturer(ctx, id)
}

// DeleteManufacturer deletes a manufacturer no model refers to.
func (s *Service) DeleteManufacturer(ctx context.Context, actor model.Actor, id int64) error {
	m, err := s.GetManufacturer(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteManufacturer(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "manufacturers", id, "Deleted manufacturer "+m.Name)
	return nil
}

// GetManufacturer returns one manufacturer.
func (s *Service) GetManufacturer(ctx context.Context, id int64) (*model.Manufacturer, error) {
	m, err := store.GetManufacturer(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("manufacturer", id)
	}
	return m, nil
}

// ListManufacturers returns every manufacturer.
func (s *Service) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	list, err := store.ListManufacturers(ctx, s.DB)
	if list == nil && err == nil {
		list = []model.Manufacturer{}
	}
	return list, err
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, actor model.Actor, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := store.CreateCategory(ctx, s.DB, in.Name, in.Type, in.Count)
	if err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionCreate, "categories", c.ID, "Created category "+c.Name)
	return c, nil
}

// UpdateCategory replaces the name, type and count of a category.
func (s *Service) UpdateCategory(ctx context.Context, actor model.Actor, id int64, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	if err := store.UpdateCategory(ctx, s.DB, id, in.Name, in.Type, in.Count); err != nil {
		return nil, err
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "categories", id, "Updated category "+in.Name)
	return s.GetCategory(ctx, id)
}

// DeleteCategory deletes a category no model refers to.
func (s *Service) DeleteCategory(ctx context.Context, actor model.Actor, id int64) error {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteCategory(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "categories", id, "Deleted category "+c.Name)
	return nil
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	c, err := store.GetCategory(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category", id)
	}
	return c, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := store.ListCategories(ctx, s.DB)
	if list == nil && err == nil {
		list = []model.Category{}
	}
	return list, err
}

// checkModelRefs verifies the manufacturer and category a model points at.
func checkModelRefs(ctx context.Context, q store.Querier, in ModelInput) error {
	mf, err := store.GetManufacturer(ctx, q, in.ManufacturerID)
	if err != nil {
		return err
	}
	if mf == nil {
		return apperr.NotFound("manufacturer", in.ManufacturerID)
	}
	c, err := store.GetCategory(ctx, q, in.CategoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("category", in.CategoryID)
	}
	return nil
}

// CreateModel adds a model under an existing manufacturer and category.
func (s *Service) CreateModel(ctx context.Context, actor model.Actor, in ModelInput) (*model.AssetModel, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var created *model.AssetModel
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkModelRefs(ctx, tx, in); err != nil {
			return err
		}
		var err error
		created, err = store.CreateModel(ctx, tx, &model.AssetModel{
			Name: in.Name, ManufacturerID: in.ManufacturerID, CategoryID: in.CategoryID, Count: in.Count,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Activity.Record(ctx, actor, model.ActionCreate, "models", created.ID, "Created model "+created.Name)
	return created, nil
}

// UpdateModel edits a model. Moving it to another category moves all its
// assets along in the same transaction.
func (s *Service) UpdateModel(ctx context.Context, actor model.Actor, id int64, in ModelInput) (*model.AssetModel, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	current, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkModelRefs(ctx, s.DB, in); err != nil {
		return nil, err
	}

	err = store.UpdateModel(ctx, s.DB, &model.AssetModel{
		ID: id, Name: in.Name, ManufacturerID: in.ManufacturerID, CategoryID: in.CategoryID, Count: in.Count,
	})
	if err != nil {
		return nil, err
	}

	desc := "Updated model " + in.Name
	if current.CategoryID != in.CategoryID {
		desc = fmt.Sprintf("Updated model %s and moved its assets to category %d", in.Name, in.CategoryID)
	}
	s.Activity.Record(ctx, actor, model.ActionUpdate, "models", id, desc)
	return s.GetModel(ctx, id)
}

// DeleteModel deletes a model no asset refers to.
func (s *Service) DeleteModel(ctx context.Context, actor model.Actor, id int64) error {
	m, err := s.GetModel(ctx, id)
	if err != nil {
		return err
	}
	if err := store.DeleteModel(ctx, s.DB, id); err != nil {
		return err
	}
	s.Activity.Record(ctx, actor, model.ActionDelete, "models", id, "Deleted model "+m.Name)
	return nil
}

// GetModel returns one model.
func (s *Service) GetModel(ctx context.Context, id int64) (*model.AssetModel, error) {
	m, err := store.GetModel(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("model", id)
	}
	return m, nil
}

// ListModels returns the models of a category, or all of them when
// categoryID is 0.
func (s *Service) ListModels(ctx context.Context, categoryID int64) ([]model.AssetModel, error) {
	list, err := store.ListModels(ctx, s.DB, categoryID)
	if list == nil && err == nil {
		list = []model.AssetModel{}
	}
	return list, err
}
