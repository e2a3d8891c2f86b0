package scheduler

import (
	"time"

	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
)

// Detector turns successive clock observations into milestones. It is
// edge-triggered: every milestone comes out of exactly one observation.
type Detector struct {
	race   raceclock.Config
	replay bool

	running       bool // a running lap has been observed
	startFired    bool
	finalFired    bool
	lastCompleted int
}

// NewDetector builds a detector. With replay set, every lap completed between
// two observations is reported in order; otherwise only the latest one is.
func NewDetector(race raceclock.Config, replay bool) *Detector {
	return &Detector{race: race, replay: replay}
}

// Observe reports the milestones reached since the previous observation.
// Laps that finished before the first running observation are not reported.
func (d *Detector) Observe(now time.Time) []models.Milestone {
	var out []models.Milestone
	switch raceclock.PhaseAt(now, d.race) {
	case raceclock.PhaseRunning:
		lap, _ := raceclock.CurrentLap(now, d.race)
		if !d.running {
			d.running = true
			d.lastCompleted = lap - 1
		}
		if !d.startFired {
			d.startFired = true
			out = append(out, models.StartMilestone())
		}
		out = append(out, d.complete(lap-1)...)
	case raceclock.PhaseFinished:
		if !d.running || d.finalFired {
			return nil
		}
		out = append(out, d.complete(d.race.TotalLaps)...)
		d.finalFired = true
		out = append(out, models.FinalMilestone())
	}
	return out
}

func (d *Detector) complete(through int) []models.Milestone {
	if through <= d.lastCompleted {
		return nil
	}
	from := d.lastCompleted + 1
	if !d.replay {
		from = through
	}
	d.lastCompleted = through
	out := make([]models.Milestone, 0, through-from+1)
	for lap := from; lap <= through; lap++ {
		out = append(out, models.LapMilestone(lap))
	}
	return out
}
