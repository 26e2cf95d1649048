package bot

import (
	"context"
	"errors"
	"fmt"

	"mcstatusbot/internal/stats"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var manageChannels int64 = discordgo.PermissionManageChannels

// Slash commands the bot registers
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     COMMAND_NAME,
			Description:              "Manage the server stats display",
			DefaultMemberPermissions: &manageChannels,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setup",
					Description: "Setup server stats in a channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "The channel to send stats to",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
							Required:     true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove server stats display",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "View current server stats",
				},
			},
		},
	}
}

func (bot *Bot) setup(ctx context.Context, discord Discord, guildId string, channelId string) Response {

	// Check if already setup
	if _, ok := bot.registry.Get(ctx, guildId); ok {
		log.Info().Msg(fmt.Sprintf("Stats are already set up in guild %s", guildId))
		return AlreadySetup()
	}

	// Send the stats message to the chosen channel
	result := bot.cache.Get(ctx, bot.display.JavaIp)
	message, err := discord.ChannelMessageSendComplex(channelId, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{stats.StatsEmbed(bot.display, result.Snapshot)},
	})
	if err != nil {
		log.Error().Str("guild", guildId).Msg(fmt.Sprintf("Could not send stats message to channel %s: %s", channelId, err))
		return SetupFailed()
	}

	// Persist, and take the message back if that fails
	err = bot.registry.Setup(ctx, guildId, channelId, message.ID)
	if err != nil {
		if deleteErr := discord.ChannelMessageDelete(channelId, message.ID); deleteErr != nil {
			log.Debug().Msg(fmt.Sprintf("Could not delete stats message %s: %s", message.ID, deleteErr))
		}
		if errors.Is(err, stats.ErrAlreadyExists) {
			return AlreadySetup()
		}
		log.Error().Str("guild", guildId).Msg(fmt.Sprintf("Could not save stats binding: %s", err))
		return SetupFailed()
	}
	return SetupComplete(channelId, bot.display.JavaIp)
}

func (bot *Bot) remove(ctx context.Context, guildId string) Response {

	_, err := bot.registry.Remove(ctx, guildId)
	switch {
	case err == nil:
		return Removed()
	case errors.Is(err, stats.ErrNotFound):
		log.Info().Msg(fmt.Sprintf("Stats were not set up in guild %s", guildId))
		return NotSetup()
	default:
		log.Error().Str("guild", guildId).Msg(fmt.Sprintf("Could not remove stats binding: %s", err))
		return RemoveFailed()
	}
}

func (bot *Bot) view(ctx context.Context) Response {
	result := bot.cache.Get(ctx, bot.display.JavaIp)
	return StatsView(stats.StatsEmbed(bot.display, result.Snapshot))
}
