package presence

import "sync"

type SubServer struct {
	Name  string
	Emoji string
}

func DefaultSubServers() []SubServer {
	return []SubServer{
		{Name: "One Block", Emoji: "⛏️"},
		{Name: "Survival", Emoji: "🌲"},
	}
}

// Round robin over the sub-servers shown in the presence
type RotationScheduler struct {
	mu      sync.Mutex
	entries []SubServer
	cursor  int
}

// An empty list falls back to the default sub-servers
func NewRotationScheduler(entries []SubServer) *RotationScheduler {
	if len(entries) == 0 {
		entries = DefaultSubServers()
	}
	return &RotationScheduler{entries: append([]SubServer(nil), entries...)}
}

// Return the entry under the cursor and move the cursor forward
func (r *RotationScheduler) Next() SubServer {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.entries[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.entries)
	return entry
}

func (r *RotationScheduler) Len() int {
	return len(r.entries)
}
