package presence

import "sync"

// Number of consecutive 0/0 readings before the server counts as offline
const ZERO_READINGS_THRESHOLD = 3

// Some status APIs report an unreachable server as online with 0/0 players.
// The debouncer only trusts that reading once it has been seen
// ZERO_READINGS_THRESHOLD times in a row
type OfflineDebouncer struct {
	mu        sync.Mutex
	enabled   bool
	threshold int
	count     int
}

func NewOfflineDebouncer(enabled bool) *OfflineDebouncer {
	return &OfflineDebouncer{enabled: enabled, threshold: ZERO_READINGS_THRESHOLD}
}

// Feed one reading and report if the server is considered offline
func (d *OfflineDebouncer) Evaluate(playersOnline int, playersMax int) bool {
	if !d.enabled {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if playersOnline != 0 || playersMax != 0 {
		d.count = 0
		return false
	}
	d.count++
	return d.count >= d.threshold
}

// Forget the readings seen so far. Used when there is no reading at all
func (d *OfflineDebouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count = 0
}

func (d *OfflineDebouncer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}
