package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	InviteID   string      `json:"invite_id"`
	EventName  string      `json:"event_name"`
	Location   string      `json:"location,omitempty"`
	Date       string      `json:"date,omitempty"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID          int64  `json:"id"`
	Activity    string `json:"activity"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(inv invite.Invitation, def timeline.ClockPair, path string) error {
	win, items := Schedule(inv, def)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		InviteID:   inv.ID,
		EventName:  inv.EventName,
		Location:   inv.Location,
		Date:       inv.Date,
		Start:      timeline.FormatHHMM(win.Start),
		End:        timeline.FormatHHMM(win.End),
		Count:      len(items),
		Entries:    []jsonEntry{},
	}

	for _, it := range items {
		secs := int64(it.End-it.Start) * 60
		export.Entries = append(export.Entries, jsonEntry{
			ID:          it.ID,
			Activity:    it.Name,
			Start:       timeline.FormatHHMM(it.Start),
			End:         timeline.FormatHHMM(it.End),
			DurationSec: secs,
			Duration:    formatDuration(secs),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
