package bot

import (
	"github.com/bwmarrin/discordgo"
)

// The part of the discord session the command handlers use.
// Satisfied by *discordgo.Session
type Discord interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
}

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// A response fills the deferred reply of an interaction
type Response interface {
	Edit(discord Discord, interaction *discordgo.Interaction) error
}

func (response ResponseString) Edit(discord Discord, interaction *discordgo.Interaction) error {
	content := response.string
	_, err := discord.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (response ResponseEmbed) Edit(discord Discord, interaction *discordgo.Interaction) error {
	_, err := discord.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{&response.MessageEmbed}})
	return err
}

// Acknowledge the interaction with an ephemeral "thinking" reply
func acknowledge(discord Discord, interaction *discordgo.Interaction) error {
	return discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}
