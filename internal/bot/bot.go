package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mcstatusbot/internal/common"
	"mcstatusbot/internal/config"
	"mcstatusbot/internal/mcstatus"
	"mcstatusbot/internal/presence"
	"mcstatusbot/internal/stats"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// How long a command may take before giving up on it
const commandTimeout = 15 * time.Second

type Bot struct {
	commandGuildId string
	session        *discordgo.Session
	display        stats.Display
	cache          stats.StatusSource
	registry       *stats.Registry
	presence       *presence.Updater
	fanout         *stats.FanoutUpdater
	scheduler      *common.Scheduler
	statusInterval time.Duration
	statsInterval  time.Duration
	ready          sync.Once
}

func NewBot(cfg config.Config, database common.Database) (*Bot, error) {

	// Create session. Nothing is opened until Run
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	var bot Bot
	bot.commandGuildId = cfg.CommandGuildId
	bot.session = session
	bot.display = stats.Display{
		ServerName: cfg.ServerName,
		JavaIp:     cfg.ServerIp,
		BedrockIp:  cfg.BedrockIp,
		Every:      cfg.StatsInterval,
	}
	// Status cache shared by the presence, the stats messages and the commands
	cache := mcstatus.NewStatusCache(cfg.Timeout, mcstatus.WithRoute(cfg.StatusApiUrl), mcstatus.WithTTL(cfg.CacheTTL))
	bot.cache = cache
	bot.registry = stats.NewRegistry(database, session)
	bot.presence = presence.NewUpdater(cfg.ServerIp, cache, session,
		presence.NewOfflineDebouncer(cfg.AutoOffline), presence.NewRotationScheduler(cfg.SubServers))
	bot.fanout = stats.NewFanoutUpdater(bot.display, cache, bot.registry, session)
	bot.scheduler = common.NewScheduler()
	bot.statusInterval = cfg.StatusInterval
	bot.statsInterval = cfg.StatsInterval

	if err := bot.schedule(); err != nil {
		return nil, err
	}
	return &bot, nil
}

// Open the gateway and keep the bot running until ctx is cancelled
func (bot *Bot) Run(ctx context.Context) error {

	// Event handlers
	bot.session.AddHandler(bot.Ready)
	bot.session.AddHandler(bot.Receive)

	// Open session
	if err := bot.session.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer bot.session.Close()

	log.Info().Msg("Bot running")
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	bot.scheduler.Stop()
	return nil
}

// Register the commands and start the periodic tasks the first time
// the gateway is ready. Later ready events come from reconnections
func (bot *Bot) Ready(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msg(fmt.Sprintf("Logged in as %s, in %d guild(s)", ready.User.String(), len(ready.Guilds)))
	bot.ready.Do(func() {
		if _, err := discord.ApplicationCommandBulkOverwrite(ready.User.ID, bot.commandGuildId, Commands()); err != nil {
			log.Error().Msg(fmt.Sprintf("Could not register commands: %s", err))
		} else {
			log.Info().Msg("Commands registered")
		}
		log.Info().Msg(fmt.Sprintf("Configured server: %s, bedrock server: %s", bot.display.JavaIp, bot.display.BedrockIp))
		bot.scheduler.Start()
	})
}

func (bot *Bot) Receive(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	bot.handle(ctx, discord, interaction.Interaction)
}

func (bot *Bot) handle(ctx context.Context, discord Discord, interaction *discordgo.Interaction) {

	// Only slash commands
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	// Parse the input provided and call the appropriate function
	parseResult := Parse(interaction.ApplicationCommandData())
	if parseResult.parseid == PARSEID_NOT_FOR_THE_BOT {
		return
	}
	if err := acknowledge(discord, interaction); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not acknowledge interaction %s: %s", interaction.ID, err))
		return
	}

	var response Response
	switch {
	case interaction.GuildID == "":
		log.Debug().Msg("Ignoring command outside a guild")
		response = GuildOnly()
	case parseResult.parseid != PARSEID_OK:
		// The command is invalid input, so it contains an error message
		log.Info().Msg(fmt.Sprintf("Wrong input. Reason: %s", parseResult.errorMessage))
		response = InputNotValid(parseResult.errorMessage)
	default:
		switch parseResult.command {
		case COMMAND_SETUP:
			channelId := parseResult.arguments.(string)
			response = bot.setup(ctx, discord, interaction.GuildID, channelId)
		case COMMAND_REMOVE:
			response = bot.remove(ctx, interaction.GuildID)
		case COMMAND_VIEW:
			response = bot.view(ctx)
		default:
			log.Error().Msg(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
			return
		}
	}

	if err := response.Edit(discord, interaction); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not reply to interaction %s: %s", interaction.ID, err))
	}
}

// The presence runs right away, the stats messages after their first period
func (bot *Bot) schedule() error {
	err := bot.scheduler.Add(common.Task{
		Name:  "presence",
		Every: bot.statusInterval,
		Action: func(ctx context.Context) {
			bot.presence.Tick(ctx)
		},
	})
	if err != nil {
		return err
	}
	return bot.scheduler.Add(common.Task{
		Name:  "stats",
		Every: bot.statsInterval,
		Delay: bot.statsInterval,
		Action: func(ctx context.Context) {
			bot.fanout.Tick(ctx)
		},
	})
}
