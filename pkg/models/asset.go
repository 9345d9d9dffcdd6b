package models

import "time"

// AssetType categorizes a monitored store device.
type AssetType string

const (
	AssetTypePDV     AssetType = "PDV"
	AssetTypeScale   AssetType = "Balança"
	AssetTypeServer  AssetType = "Servidor"
	AssetTypePrinter AssetType = "Impressora"
	AssetTypeSwitch  AssetType = "Switch"
)

// AssetTypes lists every known asset type in display order.
var AssetTypes = []AssetType{
	AssetTypePDV,
	AssetTypeScale,
	AssetTypeServer,
	AssetTypePrinter,
	AssetTypeSwitch,
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Asset is a monitored device owned by a Store.
type Asset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         AssetType `json:"type"`
	IP           string    `json:"ip"`
	MAC          string    `json:"mac"`
	Latency      int       `json:"latency"`
	LastSeen     time.Time `json:"last_seen"`
	Status       Status    `json:"status"`
	StoreID      string    `json:"store_id"`
	OS           string    `json:"os,omitempty"`
	Model        string    `json:"model,omitempty"`
	PurchaseDate string    `json:"purchase_date,omitempty"`
	Observation  string    `json:"observation,omitempty"`
	CPUUsage     *int      `json:"cpu_usage,omitempty"`
	DiskUsage    *int      `json:"disk_usage,omitempty"`
}

// Instrumented reports whether the asset reports both CPU and disk
// utilization. Only instrumented assets receive simulated telemetry.
func (a Asset) Instrumented() bool {
	return a.CPUUsage != nil && a.DiskUsage != nil
}

// Clone returns a copy of a that shares no pointers with the original.
func (a Asset) Clone() Asset {
	if a.CPUUsage != nil {
		a.CPUUsage = Percent(*a.CPUUsage)
	}
	if a.DiskUsage != nil {
		a.DiskUsage = Percent(*a.DiskUsage)
	}
	return a
}

// Percent returns a pointer to v clamped to [0,100].
func Percent(v int) *int {
	c := ClampPercent(v)
	return &c
}

// ClampPercent clamps v to [0,100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
