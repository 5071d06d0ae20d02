package catalog

import (
	"time"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Snapshot is the immutable, locale-resolved view of the catalog the
// engine evaluates against. It is built once per request (or reload)
// and shared read-only; the engine never mutates or refreshes it.
type Snapshot struct {
	Programs  []models.Program
	Questions []models.Question
	Locale    string
	LoadedAt  time.Time
}

// ActiveOnly returns a copy of the snapshot with inactive programs
// removed. The store already filters them for resident queries, but
// snapshots assembled elsewhere go through this before matching.
func (s Snapshot) ActiveOnly() Snapshot {
	out := s
	out.Programs = make([]models.Program, 0, len(s.Programs))
	for _, p := range s.Programs {
		if p.IsActive {
			out.Programs = append(out.Programs, p)
		}
	}
	return out
}
