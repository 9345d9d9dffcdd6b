package testutil

import (
	"time"

	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

// Fixed ids used by NewState.
const (
	StoreCentro   = "s1"
	StoreShopping = "s2"
	AssetPDV      = "pdv-1-1"
	AssetServer   = "srv-2-1"
	AssetSwitch   = "sw-2-1"
	AlertServer   = "a1"
	AlertPDV      = "a2"
)

// NewState returns a small, deterministic state: two stores, an
// instrumented PDV, a server with hardware details, an uninstrumented
// switch and two active alerts.
func NewState() state.State {
	ts := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return state.State{
		Stores: []models.Store{
			NewStore(StoreCentro, "Loja Centro", "Sul",
				NewAsset(WithAssetID(AssetPDV), WithAssetName("PDV 01"), WithIP("10.0.1.11"), WithUsage(45, 60)),
			),
			NewStore(StoreShopping, "Loja Shopping", "Sudeste",
				NewAsset(
					WithAssetID(AssetServer),
					WithAssetName("Servidor Principal"),
					WithAssetType(models.AssetTypeServer),
					WithIP("10.0.2.10"),
					WithAssetStatus(models.StatusCritical),
					WithDetails("Dell PowerEdge R740", "Ubuntu 22.04", 120),
					WithUsage(92, 85),
				),
				NewAsset(
					WithAssetID(AssetSwitch),
					WithAssetName("Switch Core"),
					WithAssetType(models.AssetTypeSwitch),
					WithIP("10.0.2.1"),
					WithUsage(-1, -1),
				),
			),
		},
		Alerts: []models.Alert{
			{ID: AlertServer, Timestamp: ts, Severity: models.StatusCritical, Message: "Servidor com uso de CPU acima de 90%", DeviceID: AssetServer},
			{ID: AlertPDV, Timestamp: ts, Severity: models.StatusWarning, Message: "PDV com latência elevada", DeviceID: AssetPDV},
		},
		Notifications: models.DefaultNotificationSettings(),
	}
}

// NewContainer returns a Container seeded with NewState.
func NewContainer() *state.Container {
	return state.NewContainer(NewState())
}
