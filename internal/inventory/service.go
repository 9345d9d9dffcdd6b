package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

// StoreInput carries the editable fields of a store.
type StoreInput struct {
	Name    string         `json:"name"`
	Region  string         `json:"region"`
	Address string         `json:"address"`
	Status  *models.Status `json:"status,omitempty"`
}

// AssetInput carries the fields accepted when registering an asset.
type AssetInput struct {
	StoreID     string           `json:"store_id"`
	Name        string           `json:"name"`
	Type        models.AssetType `json:"type"`
	IP          string           `json:"ip"`
	MAC         string           `json:"mac"`
	Observation string           `json:"observation"`
}

// AssetFilter narrows ListAssets. Zero fields match everything.
type AssetFilter struct {
	StoreID string
	Status  models.Status
	Type    models.AssetType
}

func (f AssetFilter) validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return &state.ValidationError{Message: fmt.Sprintf("unknown status %q", f.Status)}
	}
	if f.Type != "" && !f.Type.Valid() {
		return &state.ValidationError{Message: fmt.Sprintf("unknown asset type %q", f.Type)}
	}
	return nil
}

func (f AssetFilter) match(a models.Asset) bool {
	if f.StoreID != "" && a.StoreID != f.StoreID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	return true
}

// ListStores returns every store with its assets.
func (m *Module) ListStores() []models.Store {
	return m.state.Snapshot().Stores
}

// GetStore returns one store.
func (m *Module) GetStore(id string) (models.Store, error) {
	st, ok := m.state.Snapshot().Store(id)
	if !ok {
		return models.Store{}, fmt.Errorf("store %q: %w", id, state.ErrNotFound)
	}
	return st, nil
}

// CreateStore registers a store with status normal and no assets.
func (m *Module) CreateStore(ctx context.Context, in StoreInput) (models.Store, error) {
	id := m.newID()
	s, err := m.state.Dispatch(state.CreateStore{
		ID:      id,
		Name:    in.Name,
		Region:  in.Region,
		Address: in.Address,
	})
	if err != nil {
		return models.Store{}, err
	}
	st, _ := s.Store(id)
	m.logger.Info("store created",
		zap.String("store_id", id),
		zap.String("name", st.Name),
		zap.String("region", st.Region),
	)
	m.publish(ctx, state.TopicStoreCreated, st)
	return st, nil
}

// UpdateStore edits a store in place, keeping its id and assets.
func (m *Module) UpdateStore(ctx context.Context, id string, in StoreInput) (models.Store, error) {
	s, err := m.state.Dispatch(state.UpdateStore{
		ID:      id,
		Name:    in.Name,
		Region:  in.Region,
		Address: in.Address,
		Status:  in.Status,
	})
	if err != nil {
		return models.Store{}, err
	}
	st, _ := s.Store(id)
	m.logger.Info("store updated", zap.String("store_id", id))
	m.publish(ctx, state.TopicStoreUpdated, st)
	return st, nil
}

// DeleteStore removes a store together with all of its assets.
func (m *Module) DeleteStore(ctx context.Context, id string) error {
	before, ok := m.state.Snapshot().Store(id)
	if _, err := m.state.Dispatch(state.DeleteStore{ID: id}); err != nil {
		return err
	}
	assets := 0
	if ok {
		assets = len(before.Assets)
	}
	m.logger.Info("store deleted",
		zap.String("store_id", id),
		zap.Int("assets_removed", assets),
	)
	m.publish(ctx, state.TopicStoreDeleted, id)
	return nil
}

// Selection returns the selected store pointer.
func (m *Module) Selection() state.Selection {
	return m.state.Snapshot().Selection
}

// SelectStore opens a store in the inventory view. An empty id clears it.
func (m *Module) SelectStore(ctx context.Context, id string) (state.Selection, error) {
	s, err := m.state.Dispatch(state.SelectStore{ID: id})
	if err != nil {
		return state.Selection{}, err
	}
	m.publish(ctx, state.TopicStoreSelected, s.Selection)
	return s.Selection, nil
}

// CreateAsset registers a device in an existing store.
func (m *Module) CreateAsset(ctx context.Context, in AssetInput) (models.Asset, error) {
	id := m.newID()
	s, err := m.state.Dispatch(state.CreateAsset{
		ID:          id,
		StoreID:     in.StoreID,
		Name:        in.Name,
		Type:        in.Type,
		IP:          in.IP,
		MAC:         in.MAC,
		Observation: in.Observation,
		Now:         m.now().UTC(),
	})
	if err != nil {
		return models.Asset{}, err
	}
	a, _ := s.Asset(id)
	m.logger.Info("asset created",
		zap.String("asset_id", id),
		zap.String("store_id", a.StoreID),
		zap.String("type", string(a.Type)),
		zap.String("ip", a.IP),
	)
	m.publish(ctx, state.TopicAssetCreated, a)
	return a, nil
}

// ListAssets returns the assets of every store, in store order, that match f.
func (m *Module) ListAssets(f AssetFilter) ([]models.Asset, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	s := m.state.Snapshot()
	if f.StoreID != "" {
		if _, ok := s.Store(f.StoreID); !ok {
			return nil, fmt.Errorf("store %q: %w", f.StoreID, state.ErrNotFound)
		}
	}
	out := []models.Asset{}
	for _, a := range s.AllAssets() {
		if f.match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
