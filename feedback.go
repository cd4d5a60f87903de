package quizsfx

import (
	"sync"
	"time"

	"github.com/cbegin/quizsfx-go/internal/catalog"
	"github.com/cbegin/quizsfx-go/internal/clock"
)

// quickAnswer is the response time under which a correct answer earns the
// brighter, louder chime.
const quickAnswer = 2 * time.Second

// PlayAnswerFeedback plays the cue for an answered question. A streak only
// matters for correct answers; responseTime zero means unknown.
func (e *Engine) PlayAnswerFeedback(correct, streak bool, responseTime time.Duration) {
	switch {
	case correct && streak:
		e.playRole(catalog.RoleStreak, 1.5)
	case correct && responseTime > 0 && responseTime < quickAnswer:
		e.playRole(catalog.RoleCorrect, 1.4, Position{X: 1})
	case correct:
		e.playRole(catalog.RoleCorrect, 1.0, Position{X: 0.5})
	default:
		e.playRole(catalog.RoleIncorrect, 0.8, Position{X: -0.8, Z: 0.3})
	}
}

type Milestone int

const (
	MilestoneAchievement Milestone = iota
	MilestoneCompletion
	MilestoneCelebration
)

func (e *Engine) PlayMilestone(m Milestone) {
	switch m {
	case MilestoneAchievement:
		e.playRole(catalog.RoleAchievement, 1.3)
	case MilestoneCompletion:
		e.playRole(catalog.RoleCompletion, 1.8)
	case MilestoneCelebration:
		e.playRole(catalog.RoleCelebration, 1.5)
	}
}

func (e *Engine) PlayPageTransition() {
	e.playRole(catalog.RoleTransition, 1.0)
}

type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
)

// PlayUrgencyAlert plays the countdown tick, or the alarm at high urgency.
func (e *Engine) PlayUrgencyAlert(u Urgency) {
	switch u {
	case UrgencyHigh:
		e.playRole(catalog.RoleAlert, 1.5)
	case UrgencyMedium:
		e.playRole(catalog.RoleCountdown, 1.2)
	default:
		e.playRole(catalog.RoleCountdown, 1.0)
	}
}

type Progress int

const (
	ProgressNormal Progress = iota
	ProgressMilestone
	ProgressCompletion
)

// PlayProgress marks quiz progress. Milestones and completion add staggered
// follow-up cues; StopAll and Shutdown cancel the ones not yet started.
func (e *Engine) PlayProgress(p Progress) {
	switch p {
	case ProgressMilestone:
		e.playRole(catalog.RoleAchievement, 1.6)
		e.after(300*time.Millisecond, func() { e.playRole(catalog.RoleProgress, 1.2) })
	case ProgressCompletion:
		e.playRole(catalog.RoleProgress, 1.8)
		e.after(400*time.Millisecond, func() { e.playRole(catalog.RoleAchievement, 1.5) })
		e.after(800*time.Millisecond, func() { e.playRole(catalog.RoleStreak, 1.3) })
	default:
		e.playRole(catalog.RoleProgress, 1.1)
	}
}

func (e *Engine) PlayButtonClick() { e.playRole(catalog.RoleClick, 1.0) }

func (e *Engine) PlayWheelSpin() { e.playRole(catalog.RoleSpin, 1.0) }

func (e *Engine) PlayConfetti() { e.playRole(catalog.RoleCelebration, 1.0) }

func (e *Engine) PlayPrize() { e.playRole(catalog.RolePrize, 1.0) }

// StartCountdown ticks once a second for seconds seconds with rising
// urgency: soft alerts at 30 and 15 seconds left, ticks from 10 to 6, alarms
// (and onAlert) from 5 to 1, and a final alarm plus onTimeUp at zero. The
// returned func stops the countdown; it is safe to call more than once.
// Callbacks run on a timer goroutine.
func (e *Engine) StartCountdown(seconds int, onAlert, onTimeUp func()) (cancel func()) {
	cd := &countdown{e: e, left: seconds, onAlert: onAlert, onTimeUp: onTimeUp}
	cd.schedule()
	return cd.stop
}

type countdown struct {
	e        *Engine
	onAlert  func()
	onTimeUp func()

	mu      sync.Mutex
	left    int
	timer   clock.Timer
	stopped bool
}

func (cd *countdown) schedule() {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.stopped {
		return
	}
	cd.timer = cd.e.clock.AfterFunc(time.Second, cd.tick)
}

func (cd *countdown) tick() {
	cd.mu.Lock()
	if cd.stopped {
		cd.mu.Unlock()
		return
	}
	cd.left--
	left := cd.left
	cd.mu.Unlock()

	e := cd.e
	switch {
	case left == 30:
		e.playRole(catalog.RoleAlert, 0.8)
	case left == 15:
		e.playRole(catalog.RoleAlert, 1.0)
	case left <= 10 && left > 5:
		urgency := float64(10-left) / 5
		e.playRole(catalog.RoleCountdown, 0.6+urgency*0.4)
	case left <= 5 && left > 0:
		e.playRole(catalog.RoleAlert, 1.3+float64(5-left)*0.1)
		if cd.onAlert != nil {
			cd.onAlert()
		}
	}
	if left <= 0 {
		cd.stop()
		e.playRole(catalog.RoleAlert, 2.0)
		if cd.onTimeUp != nil {
			cd.onTimeUp()
		}
		return
	}
	cd.schedule()
}

func (cd *countdown) stop() {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	cd.stopped = true
	if cd.timer != nil {
		cd.timer.Stop()
	}
}
