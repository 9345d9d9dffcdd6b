package models

// Channel names a notification destination kind.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelDiscord  Channel = "discord"
	ChannelEmail    Channel = "email"
)

// ChannelSettings configures one notification channel.
type ChannelSettings struct {
	Enabled     bool   `json:"enabled"`
	Destination string `json:"destination"`
}

// NotificationSettings is the process-wide channel configuration. It is
// declared for a future dispatcher; nothing sends notifications today.
type NotificationSettings struct {
	Telegram ChannelSettings `json:"telegram"`
	Discord  ChannelSettings `json:"discord"`
	Email    ChannelSettings `json:"email"`
}

// DefaultNotificationSettings returns the settings a fresh process starts with.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Email: ChannelSettings{Enabled: true, Destination: "suporte@sentinel.com"},
	}
}

// Channels returns the settings keyed by channel name.
func (n NotificationSettings) Channels() map[Channel]ChannelSettings {
	return map[Channel]ChannelSettings{
		ChannelTelegram: n.Telegram,
		ChannelDiscord:  n.Discord,
		ChannelEmail:    n.Email,
	}
}

// Enabled returns the channels that are switched on.
func (n NotificationSettings) Enabled() []Channel {
	var out []Channel
	for _, c := range []Channel{ChannelTelegram, ChannelDiscord, ChannelEmail} {
		if n.Channels()[c].Enabled {
			out = append(out, c)
		}
	}
	return out
}
