package stats

import (
	"fmt"
	"strconv"
	"time"

	"mcstatusbot/internal/mcstatus"

	"github.com/bwmarrin/discordgo"
)

const (
	ONLINE_COLOR  int = 0xb6cdff
	OFFLINE_COLOR int = 0xff6b6b
)

// What the stats message shows besides the status itself
type Display struct {
	ServerName string
	JavaIp     string
	BedrockIp  string
	Every      time.Duration
}

// Render the stats embed for a snapshot
func StatsEmbed(display Display, snapshot mcstatus.Snapshot) *discordgo.MessageEmbed {

	if !snapshot.Online {
		return &discordgo.MessageEmbed{
			Color:       OFFLINE_COLOR,
			Description: fmt.Sprintf("❌ Server offline\n\nJava IP `%s`\nBedrock IP `%s`", display.JavaIp, display.BedrockIp),
		}
	}

	version := snapshot.Version
	if version == "" {
		version = mcstatus.UNKNOWN_VERSION
	}
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s Server Stats", display.ServerName),
		Color:     ONLINE_COLOR,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Last updated"},
		Timestamp: snapshot.FetchedAt.UTC().Format(time.RFC3339),
	}
	if display.Every > 0 {
		embed.Description = fmt.Sprintf("Auto updates every %s seconds", strconv.FormatFloat(display.Every.Seconds(), 'f', -1, 64))
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Status", Value: "Online", Inline: true},
		{Name: "Players", Value: fmt.Sprintf("%d/%d", snapshot.PlayersOnline, snapshot.PlayersMax), Inline: true},
		{Name: "Ping", Value: fmt.Sprintf("%dms", snapshot.PingMillis), Inline: true},
		{Name: "Version", Value: version, Inline: true},
		{Name: "Java IP", Value: fmt.Sprintf("`%s`", display.JavaIp), Inline: true},
		{Name: "Bedrock IP", Value: fmt.Sprintf("`%s`", display.BedrockIp), Inline: true},
	}
	return embed
}
