package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mcstatusbot/internal/common"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// How long the fan-out may use the bindings without reading them again
const STALENESS_WINDOW = 60 * time.Second

var (
	ErrAlreadyExists = errors.New("stats already set up in this guild")
	ErrNotFound      = errors.New("stats not set up in this guild")
)

// The message showing the stats in one guild
type Binding struct {
	GuildId   string `json:"-"`
	ChannelId string `json:"channelId"`
	MessageId string `json:"messageId"`
}

// Bindings keyed by guild id, as persisted
type Bindings map[string]Binding

// Satisfied by *discordgo.Session
type MessageDeleter interface {
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
}

// Durable guild -> message mapping.
// Mutations read the whole document, change it and write it back whole
type Registry struct {
	database common.Database
	deleter  MessageDeleter

	mu       sync.Mutex
	bindings Bindings
	reload   *common.TimedExecutor
}

func NewRegistry(database common.Database, deleter MessageDeleter) *Registry {
	return NewRegistryWithClock(database, deleter, time.Now)
}

func NewRegistryWithClock(database common.Database, deleter MessageDeleter, now common.Clock) *Registry {
	registry := &Registry{database: database, deleter: deleter, bindings: Bindings{}}
	registry.reload = common.NewTimedExecutorWithClock(STALENESS_WINDOW, func() error {
		return registry.read(context.Background())
	}, now)
	return registry
}

// Bind the guild to the message. Fails with ErrAlreadyExists if the guild is bound
func (registry *Registry) Setup(ctx context.Context, guildId string, channelId string, messageId string) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if err := registry.load(ctx); err != nil {
		return err
	}
	if _, ok := registry.bindings[guildId]; ok {
		return ErrAlreadyExists
	}

	registry.bindings[guildId] = Binding{GuildId: guildId, ChannelId: channelId, MessageId: messageId}
	if err := registry.save(ctx); err != nil {
		delete(registry.bindings, guildId)
		return err
	}
	log.Info().Msg(fmt.Sprintf("Stats of guild %s bound to message %s in channel %s", guildId, messageId, channelId))
	return nil
}

// Unbind the guild and delete its message if it still exists.
// Fails with ErrNotFound if the guild is not bound
func (registry *Registry) Remove(ctx context.Context, guildId string) (Binding, error) {
	binding, err := registry.unbind(ctx, guildId)
	if err != nil {
		return Binding{}, err
	}

	// The message may be gone already
	if registry.deleter != nil {
		if err := registry.deleter.ChannelMessageDelete(binding.ChannelId, binding.MessageId); err != nil {
			log.Debug().Msg(fmt.Sprintf("Could not delete stats message %s of guild %s: %s", binding.MessageId, guildId, err))
		}
	}
	return binding, nil
}

func (registry *Registry) unbind(ctx context.Context, guildId string) (Binding, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if err := registry.load(ctx); err != nil {
		return Binding{}, err
	}
	binding, ok := registry.bindings[guildId]
	if !ok {
		return Binding{}, ErrNotFound
	}

	delete(registry.bindings, guildId)
	if err := registry.save(ctx); err != nil {
		registry.bindings[guildId] = binding
		return Binding{}, err
	}
	log.Info().Msg(fmt.Sprintf("Stats of guild %s unbound", guildId))
	return binding, nil
}

func (registry *Registry) Get(ctx context.Context, guildId string) (Binding, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if err := registry.load(ctx); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not read stats bindings: %s", err))
	}
	binding, ok := registry.bindings[guildId]
	return binding, ok
}

// All the bindings, sorted by guild id.
// Reads the database again only once the staleness window has passed
// or when nothing is known yet
func (registry *Registry) Snapshot() []Binding {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if len(registry.bindings) == 0 {
		registry.reload.Expire()
	}
	if _, err := registry.reload.Execute(); err != nil {
		log.Error().Msg(fmt.Sprintf("Could not read stats bindings, using the last known ones: %s", err))
	}

	bindings := make([]Binding, 0, len(registry.bindings))
	for _, binding := range registry.bindings {
		bindings = append(bindings, binding)
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].GuildId < bindings[j].GuildId })
	return bindings
}

func (registry *Registry) load(ctx context.Context) error {
	if err := registry.read(ctx); err != nil {
		return err
	}
	registry.reload.Touch()
	return nil
}

func (registry *Registry) read(ctx context.Context) error {
	bindings := Bindings{}
	if _, err := registry.database.Load(ctx, &bindings); err != nil {
		return fmt.Errorf("loading stats bindings: %w", err)
	}
	if bindings == nil {
		bindings = Bindings{}
	}
	for guildId, binding := range bindings {
		binding.GuildId = guildId
		bindings[guildId] = binding
	}
	registry.bindings = bindings
	return nil
}

func (registry *Registry) save(ctx context.Context) error {
	if err := registry.database.Save(ctx, registry.bindings); err != nil {
		return fmt.Errorf("saving stats bindings: %w", err)
	}
	registry.reload.Touch()
	return nil
}
