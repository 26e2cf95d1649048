package presence

import (
	"context"
	"fmt"

	"mcstatusbot/internal/mcstatus"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	OFFLINE_LABEL              = "Server Offline 🔴"
	ZERO_PLAYERS_OFFLINE_LABEL = "Server Offline 🔴 | 0/0 Players"
)

// Where the server status comes from
type StatusSource interface {
	Get(ctx context.Context, ip string) mcstatus.Result
}

// Where the presence goes to. Satisfied by *discordgo.Session
type StatusSetter interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// What the bot shows as its own status
type Presence struct {
	Status       discordgo.Status
	ActivityType discordgo.ActivityType
	Label        string
}

func (p Presence) UpdateStatusData() discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Status:     string(p.Status),
		Activities: []*discordgo.Activity{{Name: p.Label, Type: p.ActivityType}},
	}
}

func offline(label string) Presence {
	return Presence{Status: discordgo.StatusDoNotDisturb, ActivityType: discordgo.ActivityTypeWatching, Label: label}
}

// Keeps the bot presence in line with the server status
type Updater struct {
	ip        string
	source    StatusSource
	setter    StatusSetter
	debouncer *OfflineDebouncer
	rotation  *RotationScheduler
}

func NewUpdater(ip string, source StatusSource, setter StatusSetter, debouncer *OfflineDebouncer, rotation *RotationScheduler) *Updater {
	return &Updater{ip: ip, source: source, setter: setter, debouncer: debouncer, rotation: rotation}
}

// Decide the presence for one poll result.
// Every call advances the rotation once, whichever presence is shown
func (u *Updater) Compute(result mcstatus.Result) Presence {

	subServer := u.rotation.Next()
	if result.Failed() || !result.Snapshot.Online {
		u.debouncer.Reset()
		return offline(OFFLINE_LABEL)
	}

	snapshot := result.Snapshot
	if u.debouncer.Evaluate(snapshot.PlayersOnline, snapshot.PlayersMax) {
		return offline(ZERO_PLAYERS_OFFLINE_LABEL)
	}

	return Presence{
		Status:       discordgo.StatusOnline,
		ActivityType: discordgo.ActivityTypeGame,
		Label:        fmt.Sprintf("%s %s | %d/%d Players | %dms", subServer.Emoji, subServer.Name, snapshot.PlayersOnline, snapshot.PlayersMax, snapshot.PingMillis),
	}
}

// One presence update: poll, decide and set the presence exactly once
func (u *Updater) Tick(ctx context.Context) Presence {
	presence := u.Compute(u.source.Get(ctx, u.ip))
	if err := u.setter.UpdateStatusComplex(presence.UpdateStatusData()); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not update presence: %s", err))
		return presence
	}
	log.Debug().Msg(fmt.Sprintf("Presence set to '%s'", presence.Label))
	return presence
}
