package catalog

import "fmt"

// Role is the semantic purpose of a cue, independent of which catalog
// supplies it.
type Role int

const (
	RoleCorrect Role = iota
	RoleIncorrect
	RoleStreak
	RoleAchievement
	RoleCompletion
	RoleCelebration
	RoleTransition
	RoleCountdown
	RoleAlert
	RoleClick
	RoleSpin
	RolePrize
	RoleProgress
)

var roleNames = [...]string{
	RoleCorrect:     "correct",
	RoleIncorrect:   "incorrect",
	RoleStreak:      "streak",
	RoleAchievement: "achievement",
	RoleCompletion:  "completion",
	RoleCelebration: "celebration",
	RoleTransition:  "transition",
	RoleCountdown:   "countdown",
	RoleAlert:       "alert",
	RoleClick:       "click",
	RoleSpin:        "spin",
	RolePrize:       "prize",
	RoleProgress:    "progress",
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r Role) mustPlay() bool {
	return r == RoleCorrect || r == RoleIncorrect || r == RoleAchievement
}
