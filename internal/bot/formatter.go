package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Green for confirmations, red for removals
const (
	successColor int = 0x4caf50
	removedColor int = 0xff6b6b
)

func InputNotValid(errorMessage string) Response {
	return ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}
}

func GuildOnly() Response {
	return ResponseString{"This command only works inside a server"}
}

func AlreadySetup() Response {
	return ResponseString{fmt.Sprintf("⚠️ Server stats are already setup! Use `/%s remove` first to reset.", COMMAND_NAME)}
}

func NotSetup() Response {
	return ResponseString{"❌ Server stats are not setup in this server!"}
}

func SetupFailed() Response {
	return ResponseString{"❌ An error occurred while setting up server stats. Make sure I have proper permissions!"}
}

func RemoveFailed() Response {
	return ResponseString{"❌ An error occurred while removing server stats."}
}

func SetupComplete(channelId string, ip string) Response {
	embed := discordgo.MessageEmbed{
		Title:       "✅ Server Stats Setup Complete!",
		Description: "Stats message has been sent and will update automatically.",
		Color:       successColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Channel",
		Value:  fmt.Sprintf("<#%s>", channelId),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Server",
		Value:  ip,
		Inline: true,
	})
	return ResponseEmbed{embed}
}

func Removed() Response {
	return ResponseEmbed{discordgo.MessageEmbed{
		Title:       "✅ Server Stats Removed",
		Description: "The server stats display has been removed.",
		Color:       removedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}}
}

func StatsView(embed *discordgo.MessageEmbed) Response {
	return ResponseEmbed{*embed}
}
