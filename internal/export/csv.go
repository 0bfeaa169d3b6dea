package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

func ToCSV(inv invite.Invitation, def timeline.ClockPair, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Activity", "Date", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	_, items := Schedule(inv, def)
	for _, it := range items {
		secs := int64(it.End-it.Start) * 60
		row := []string{
			fmt.Sprintf("%d", it.ID),
			it.Name,
			inv.Date,
			timeline.FormatHHMM(it.Start),
			timeline.FormatHHMM(it.End),
			fmt.Sprintf("%d", secs),
			formatDuration(secs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
