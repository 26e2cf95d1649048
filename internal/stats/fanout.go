package stats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"mcstatusbot/internal/mcstatus"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Discord errors meaning the message cannot be found any more
var missingCodes = map[int]struct{}{
	discordgo.ErrCodeUnknownChannel: {},
	discordgo.ErrCodeUnknownGuild:   {},
	discordgo.ErrCodeUnknownMessage: {},
}

type StatusSource interface {
	Get(ctx context.Context, ip string) mcstatus.Result
}

type BindingSource interface {
	Snapshot() []Binding
}

// Satisfied by *discordgo.Session
type MessageEditor interface {
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Outcome int

const (
	OUTCOME_UPDATED Outcome = iota
	OUTCOME_MISSING Outcome = iota
	OUTCOME_FAILED  Outcome = iota
)

// How one round of updates went
type Report struct {
	Updated int
	Missing int
	Failed  int
}

func (report Report) Total() int {
	return report.Updated + report.Missing + report.Failed
}

// Refreshes every bound stats message with one shared status poll
type FanoutUpdater struct {
	display  Display
	source   StatusSource
	bindings BindingSource
	editor   MessageEditor
}

func NewFanoutUpdater(display Display, source StatusSource, bindings BindingSource, editor MessageEditor) *FanoutUpdater {
	return &FanoutUpdater{display: display, source: source, bindings: bindings, editor: editor}
}

// Update all the bound messages concurrently and wait for every one of them.
// A failing message never stops the others
func (updater *FanoutUpdater) Tick(ctx context.Context) Report {

	bindings := updater.bindings.Snapshot()
	if len(bindings) == 0 {
		return Report{}
	}

	tick := uuid.New()
	result := updater.source.Get(ctx, updater.display.JavaIp)
	embed := StatsEmbed(updater.display, result.Snapshot)

	outcomes := make(chan Outcome, len(bindings))
	var wg sync.WaitGroup
	for _, binding := range bindings {
		wg.Add(1)
		go func(binding Binding) {
			defer wg.Done()
			outcomes <- updater.update(tick, binding, embed)
		}(binding)
	}
	wg.Wait()
	close(outcomes)

	var report Report
	for outcome := range outcomes {
		switch outcome {
		case OUTCOME_UPDATED:
			report.Updated++
		case OUTCOME_MISSING:
			report.Missing++
		default:
			report.Failed++
		}
	}
	log.Debug().Str("tick", tick.String()).Msg(fmt.Sprintf("Stats messages: %d updated, %d missing, %d failed", report.Updated, report.Missing, report.Failed))
	return report
}

func (updater *FanoutUpdater) update(tick uuid.UUID, binding Binding, embed *discordgo.MessageEmbed) (outcome Outcome) {

	// A panicking editor only takes this binding down
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tick", tick.String()).Str("guild", binding.GuildId).Msg(fmt.Sprintf("Panic updating stats message: %v", r))
			outcome = OUTCOME_FAILED
		}
	}()

	_, err := updater.editor.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    binding.ChannelId,
		ID:         binding.MessageId,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &[]discordgo.MessageComponent{},
	})
	if err == nil {
		return OUTCOME_UPDATED
	}
	if IsMissing(err) {
		return OUTCOME_MISSING
	}
	log.Error().Str("tick", tick.String()).Str("guild", binding.GuildId).Msg(fmt.Sprintf("Error updating stats message: %s", err))
	return OUTCOME_FAILED
}

// Report if err means the message, its channel or its guild no longer exist
func IsMissing(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		if _, ok := missingCodes[restErr.Message.Code]; ok {
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
