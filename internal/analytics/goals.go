package analytics

import "mapfin/internal/core"

// onTrackThreshold is the progress percentage at which a goal counts as on track.
const onTrackThreshold = 50

type GoalStatus struct {
	Goal      core.Goal `json:"goal"`
	Current   float64   `json:"current"`
	Target    float64   `json:"target"`
	Progress  float64   `json:"progress"`
	Remaining float64   `json:"remaining"`
	OnTrack   bool      `json:"on_track"`
}

// GoalProgress computes progress capped at 100 and the amount left for
// each goal. A goal without a positive target has 0 progress.
func GoalProgress(goals []core.Goal) []GoalStatus {
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		p := min(rawProgress(g), 100)
		out = append(out, GoalStatus{
			Goal:      g,
			Current:   g.CurrentAmount,
			Target:    g.TargetAmount,
			Progress:  p,
			Remaining: max(0, g.TargetAmount-g.CurrentAmount),
			OnTrack:   p >= onTrackThreshold,
		})
	}
	return out
}

// AverageGoalProgress is the mean uncapped progress across goals, as shown
// on the home dashboard. No goals gives 0.
func AverageGoalProgress(goals []core.Goal) float64 {
	if len(goals) == 0 {
		return 0
	}
	var sum float64
	for _, g := range goals {
		sum += rawProgress(g)
	}
	return sum / float64(len(goals))
}

func rawProgress(g core.Goal) float64 {
	return percentOf(g.CurrentAmount, g.TargetAmount)
}
