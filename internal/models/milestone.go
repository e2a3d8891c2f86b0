package models

import "strconv"

type MilestoneKind int

const (
	MilestoneStart MilestoneKind = iota
	MilestoneLap
	MilestoneFinal
)

// Milestone is a publication checkpoint: the start grid, a completed lap or
// the final standings. Lap is only meaningful for MilestoneLap.
type Milestone struct {
	Kind MilestoneKind
	Lap  int
}

func StartMilestone() Milestone      { return Milestone{Kind: MilestoneStart} }
func LapMilestone(lap int) Milestone { return Milestone{Kind: MilestoneLap, Lap: lap} }
func FinalMilestone() Milestone      { return Milestone{Kind: MilestoneFinal} }

func (m Milestone) String() string {
	switch m.Kind {
	case MilestoneStart:
		return "start"
	case MilestoneFinal:
		return "final"
	default:
		return "lap " + strconv.Itoa(m.Lap)
	}
}

// ParseMilestone accepts "start", "final" or a lap number.
func ParseMilestone(s string) (Milestone, error) {
	switch s {
	case "start":
		return StartMilestone(), nil
	case "final":
		return FinalMilestone(), nil
	}
	lap, err := strconv.Atoi(s)
	if err != nil {
		return Milestone{}, err
	}
	return LapMilestone(lap), nil
}
