package warnings

import "time"

type PunishmentKind string

const (
	PunishmentMute PunishmentKind = "mute"
	PunishmentKick PunishmentKind = "kick"
	PunishmentBan  PunishmentKind = "ban"
)

// Threshold is an advisory escalation step. Nothing applies it automatically;
// moderators see the suggestion next to a member's point total.
type Threshold struct {
	Points   int
	Action   PunishmentKind
	Duration time.Duration
}

func (t Threshold) String() string {
	if t.Duration > 0 {
		return string(t.Action) + " (" + t.Duration.String() + ")"
	}
	return string(t.Action)
}

// PunishmentThresholds is ordered by ascending points.
var PunishmentThresholds = []Threshold{
	{Points: 3, Action: PunishmentMute, Duration: time.Hour},
	{Points: 5, Action: PunishmentMute, Duration: 24 * time.Hour},
	{Points: 7, Action: PunishmentKick},
	{Points: 10, Action: PunishmentBan},
}

// SuggestedAction returns the highest threshold reached by points.
func SuggestedAction(points int) (Threshold, bool) {
	var (
		found Threshold
		ok    bool
	)
	for _, t := range PunishmentThresholds {
		if points >= t.Points {
			found, ok = t, true
		}
	}
	return found, ok
}
