package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const COMMAND_NAME string = "status"

const (
	COMMAND_SETUP  = iota
	COMMAND_REMOVE = iota
	COMMAND_VIEW   = iota
)

const (
	PARSEID_OK                        = iota
	PARSEID_NOT_FOR_THE_BOT           = iota
	PARSEID_NO_SUBCOMMAND             = iota
	PARSEID_SUBCOMMAND_NOT_RECOGNISED = iota
	PARSEID_NO_INPUT                  = iota
	PARSEID_NOT_A_CHANNEL             = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_SUBCOMMAND:             "No subcommand provided",
	PARSEID_SUBCOMMAND_NOT_RECOGNISED: "Subcommand `%s` not recognised",
	PARSEID_NO_INPUT:                  "Subcommand `%s` requires a channel",
	PARSEID_NOT_A_CHANNEL:             "Input `%v` is not a channel",
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

// Parse the data of a slash command interaction
func Parse(data discordgo.ApplicationCommandInteractionData) ParseResult {

	if data.Name != COMMAND_NAME {
		log.Debug().Msg(fmt.Sprintf("Reject command /%s not intended for the bot", data.Name))
		return ParseResult{parseid: PARSEID_NOT_FOR_THE_BOT}
	}

	// The subcommand is the only top level option
	if len(data.Options) == 0 || data.Options[0] == nil {
		parseid := PARSEID_NO_SUBCOMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	subcommand := data.Options[0]

	switch subcommand.Name {
	case "setup":
		// /status setup <channel>
		command := COMMAND_SETUP
		for _, option := range subcommand.Options {
			if option == nil || option.Name != "channel" {
				continue
			}
			channelId, ok := option.Value.(string)
			if !ok || channelId == "" {
				parseid := PARSEID_NOT_A_CHANNEL
				return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], option.Value)}
			}
			return ParseResult{command: command, parseid: PARSEID_OK, arguments: channelId}
		}
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], subcommand.Name)}
	case "remove":
		// /status remove
		return ParseResult{command: COMMAND_REMOVE, parseid: PARSEID_OK}
	case "view":
		// /status view
		return ParseResult{command: COMMAND_VIEW, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_SUBCOMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], subcommand.Name)}
	}
}
