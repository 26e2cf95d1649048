package mcstatus

import (
	"time"
)

const UNKNOWN_VERSION = "Unknown"

// One poll of the server status.
// When Online is false the rest of the fields carry no information
type Snapshot struct {
	Online        bool
	PlayersOnline int
	PlayersMax    int
	Version       string
	PingMillis    int
	FetchedAt     time.Time
}

func OfflineSnapshot(fetchedAt time.Time) Snapshot {
	return Snapshot{Online: false, FetchedAt: fetchedAt}
}

// Kind of outcome of a poll
type ResultKind int

const (
	RESULT_OK            ResultKind = iota
	RESULT_MALFORMED     ResultKind = iota
	RESULT_HTTP_ERROR    ResultKind = iota
	RESULT_TIMEOUT       ResultKind = iota
	RESULT_NETWORK_ERROR ResultKind = iota
)

var kindNames = map[ResultKind]string{
	RESULT_OK:            "ok",
	RESULT_MALFORMED:     "malformed",
	RESULT_HTTP_ERROR:    "http error",
	RESULT_TIMEOUT:       "timeout",
	RESULT_NETWORK_ERROR: "network error",
}

func (kind ResultKind) String() string {
	return kindNames[kind]
}

// Result of a poll. Every kind other than RESULT_OK carries an offline snapshot
type Result struct {
	Kind       ResultKind
	Snapshot   Snapshot
	StatusCode int   // only for RESULT_HTTP_ERROR
	Err        error // nil for RESULT_OK
}

// Report if the poll failed entirely, as opposed to a successful
// poll of a server that may or may not be online
func (result Result) Failed() bool {
	return result.Kind != RESULT_OK
}
