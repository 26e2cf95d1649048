package mcstatus

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type rawStatus struct {
	Online  *bool `json:"online" validate:"required"`
	Players struct {
		Online *int `json:"online" validate:"omitempty,gte=0"`
		Now    *int `json:"now" validate:"omitempty,gte=0"`
		Max    int  `json:"max" validate:"gte=0"`
	} `json:"players"`
	Version struct {
		NameClean string `json:"name_clean"`
		NameRaw   string `json:"name_raw"`
	} `json:"version"`
}

// Decode the body of the status API into a snapshot.
// Ping and fetch time are left for the caller to fill
func UnmarshalStatus(data []byte) (Snapshot, error) {

	var raw rawStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("status payload is not valid json: %w", err)
	}
	if err := validate.Struct(raw); err != nil {
		return Snapshot{}, fmt.Errorf("status payload is not valid: %w", err)
	}

	if !*raw.Online {
		return Snapshot{Online: false}, nil
	}

	snapshot := Snapshot{Online: true, PlayersMax: raw.Players.Max, Version: UNKNOWN_VERSION}
	// Older status APIs report the player count as "now"
	if raw.Players.Online != nil {
		snapshot.PlayersOnline = *raw.Players.Online
	} else if raw.Players.Now != nil {
		snapshot.PlayersOnline = *raw.Players.Now
	}
	if raw.Version.NameClean != "" {
		snapshot.Version = raw.Version.NameClean
	} else if raw.Version.NameRaw != "" {
		snapshot.Version = raw.Version.NameRaw
	}
	return snapshot, nil
}
