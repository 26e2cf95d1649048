package stats

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mcstatusbot/internal/mcstatus"

	"github.com/bwmarrin/discordgo"
)

// In memory database keeping the document as JSON, like the real ones
type memoryDatabase struct {
	mu      sync.Mutex
	data    []byte
	loads   int
	saveErr error
}

func (db *memoryDatabase) Load(_ context.Context, v any) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.loads++
	if db.data == nil {
		return false, nil
	}
	return true, json.Unmarshal(db.data, v)
}

func (db *memoryDatabase) Save(_ context.Context, v any) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.saveErr != nil {
		return db.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	db.data = data
	return nil
}

func (db *memoryDatabase) Loads() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.loads
}

type fakeDeleter struct {
	deleted []string
	err     error
}

func (d *fakeDeleter) ChannelMessageDelete(channelID string, messageID string, _ ...discordgo.RequestOption) error {
	d.deleted = append(d.deleted, channelID+"/"+messageID)
	return d.err
}

// Deleter that blocks until released
type blockingDeleter struct {
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDeleter) ChannelMessageDelete(_ string, _ string, _ ...discordgo.RequestOption) error {
	close(d.entered)
	<-d.release
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingSource struct {
	calls  atomic.Int32
	result mcstatus.Result
}

func (s *countingSource) Get(_ context.Context, _ string) mcstatus.Result {
	s.calls.Add(1)
	return s.result
}

type staticBindings []Binding

func (b staticBindings) Snapshot() []Binding {
	return b
}

// Editor failing per channel id
type fakeEditor struct {
	mu     sync.Mutex
	edits  []*discordgo.MessageEdit
	errors map[string]error
	panics map[string]bool
}

func (e *fakeEditor) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	e.mu.Lock()
	e.edits = append(e.edits, m)
	e.mu.Unlock()
	if e.panics[m.Channel] {
		panic("editor exploded")
	}
	if err, ok := e.errors[m.Channel]; ok {
		return nil, err
	}
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

var errUnexpected = errors.New("unexpected failure")
