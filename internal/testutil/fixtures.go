package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/sentinel/pkg/models"
)

// NewAsset returns an instrumented PDV with sensible defaults, suitable for
// test fixtures. Override individual fields with options.
func NewAsset(opts ...func(*models.Asset)) models.Asset {
	a := models.Asset{
		ID:        uuid.New().String(),
		Name:      "PDV 01",
		Type:      models.AssetTypePDV,
		IP:        "192.168.1.100",
		MAC:       "00:11:22:33:44:55",
		Latency:   5,
		LastSeen:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusNormal,
		CPUUsage:  models.Percent(30),
		DiskUsage: models.Percent(40),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithAssetID sets the asset id.
func WithAssetID(id string) func(*models.Asset) {
	return func(a *models.Asset) { a.ID = id }
}

// WithAssetName sets the asset name.
func WithAssetName(name string) func(*models.Asset) {
	return func(a *models.Asset) { a.Name = name }
}

// WithAssetType sets the asset type.
func WithAssetType(t models.AssetType) func(*models.Asset) {
	return func(a *models.Asset) { a.Type = t }
}

// WithIP sets the asset's IP address.
func WithIP(ip string) func(*models.Asset) {
	return func(a *models.Asset) { a.IP = ip }
}

// WithAssetStatus sets the asset status.
func WithAssetStatus(s models.Status) func(*models.Asset) {
	return func(a *models.Asset) { a.Status = s }
}

// WithUsage sets CPU and disk usage. A negative value leaves the field nil,
// making the asset uninstrumented.
func WithUsage(cpu, disk int) func(*models.Asset) {
	return func(a *models.Asset) {
		a.CPUUsage, a.DiskUsage = nil, nil
		if cpu >= 0 {
			a.CPUUsage = models.Percent(cpu)
		}
		if disk >= 0 {
			a.DiskUsage = models.Percent(disk)
		}
	}
}

// WithDetails sets model, OS and latency.
func WithDetails(model, os string, latency int) func(*models.Asset) {
	return func(a *models.Asset) {
		a.Model = model
		a.OS = os
		a.Latency = latency
	}
}

// NewStore returns a store with the given assets. Each asset's StoreID is
// rewritten to the store's id.
func NewStore(id, name, region string, assets ...models.Asset) models.Store {
	s := models.Store{
		ID:     id,
		Name:   name,
		Status: models.StatusNormal,
		Region: region,
		Assets: make([]models.Asset, 0, len(assets)),
	}
	for _, a := range assets {
		a.StoreID = id
		s.Assets = append(s.Assets, a)
	}
	return s
}
