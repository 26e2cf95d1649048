package common

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// A periodic task owned by the scheduler
type Task struct {
	Name   string
	Every  time.Duration
	Delay  time.Duration // wait before the first run. Zero runs immediately on Start
	Action func(ctx context.Context)
}

// Runs named tasks at a fixed period.
// Runs of the same task may overlap if one takes longer than its period
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	tasks   map[string]Task
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		tasks:   map[string]Task{},
		entries: map[string]cron.EntryID{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Scheduler) Add(task Task) error {
	if task.Name == "" {
		return fmt.Errorf("task name required")
	}
	if task.Every < time.Second {
		return fmt.Errorf("task %s: period %s is below one second", task.Name, task.Every)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.Name]; ok {
		return fmt.Errorf("task %s already scheduled", task.Name)
	}

	schedule := &period{every: task.Every, delay: task.Delay}
	id := s.cron.Schedule(schedule, cron.FuncJob(func() { s.run(task) }))
	s.tasks[task.Name] = task
	s.entries[task.Name] = id
	log.Info().Msg(fmt.Sprintf("Task %s scheduled every %s", task.Name, task.Every))
	return nil
}

// Names of the scheduled tasks, sorted
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start the periodic runs. Tasks without a delay also run right away
func (s *Scheduler) Start() {
	s.mu.Lock()
	tasks := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if task.Delay <= 0 {
			tasks = append(tasks, task)
		}
	}
	s.mu.Unlock()

	for _, task := range tasks {
		go s.run(task)
	}
	s.cron.Start()
}

// Stop scheduling new runs and wait for the running ones
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run(task Task) {
	if s.ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msg(fmt.Sprintf("Task %s panicked: %v", task.Name, r))
		}
	}()
	task.Action(s.ctx)
}

// Fixed period schedule. The first run comes after delay, or after one
// period when there is no delay. Unlike "@every" the period is not
// rounded to whole seconds
type period struct {
	mu      sync.Mutex
	every   time.Duration
	delay   time.Duration
	started bool
}

func (p *period) Next(t time.Time) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		p.started = true
		if p.delay > 0 {
			return t.Add(p.delay)
		}
	}
	return t.Add(p.every)
}
