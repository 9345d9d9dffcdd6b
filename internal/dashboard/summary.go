package dashboard

import (
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

// attentionLimit caps the assets listed as needing attention.
const attentionLimit = 5

// Summary is the headline view of the whole estate.
type Summary struct {
	Online          int                   `json:"online"`
	Total           int                   `json:"total"`
	Servers         int                   `json:"servers"`
	PDVs            int                   `json:"pdvs"`
	Switches        int                   `json:"switches"`
	OnlinePercent   float64               `json:"online_percent"`
	ActiveAlerts    int                   `json:"active_alerts"`
	Critical        bool                  `json:"critical"`
	StoresByStatus  map[models.Status]int `json:"stores_by_status"`
	NeedsAttention  []models.Asset        `json:"needs_attention"`
	OpenTickets     int                   `json:"open_tickets"`
	EnabledChannels []models.Channel      `json:"enabled_channels"`
}

// Summarize derives the dashboard summary from a state snapshot. Online
// counts assets whose status is normal; NeedsAttention holds the first
// warning or critical assets in store order.
func Summarize(s state.State) Summary {
	sum := Summary{
		StoresByStatus:  map[models.Status]int{},
		NeedsAttention:  []models.Asset{},
		EnabledChannels: s.Notifications.Enabled(),
	}
	if sum.EnabledChannels == nil {
		sum.EnabledChannels = []models.Channel{}
	}

	for i := range s.Stores {
		sum.StoresByStatus[s.Stores[i].Status]++
	}

	for _, a := range s.AllAssets() {
		sum.Total++
		if a.Status == models.StatusNormal {
			sum.Online++
		}
		switch a.Type {
		case models.AssetTypeServer:
			sum.Servers++
		case models.AssetTypePDV:
			sum.PDVs++
		case models.AssetTypeSwitch:
			sum.Switches++
		}
		if (a.Status == models.StatusWarning || a.Status == models.StatusCritical) &&
			len(sum.NeedsAttention) < attentionLimit {
			sum.NeedsAttention = append(sum.NeedsAttention, a)
		}
	}
	if sum.Total > 0 {
		sum.OnlinePercent = float64(sum.Online) / float64(sum.Total) * 100
	}

	sum.ActiveAlerts = len(s.ActiveAlerts())
	sum.Critical = sum.ActiveAlerts > 0

	for i := range s.Tickets {
		if s.Tickets[i].Status != models.TicketStatusClosed {
			sum.OpenTickets++
		}
	}
	return sum
}
