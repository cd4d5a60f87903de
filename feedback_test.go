package quizsfx

import (
	"testing"
	"time"
)

func countCues(log *voiceLog, id string) (n int, vols []float64) {
	for _, v := range log.starts() {
		if v.SoundID == id {
			n++
			vols = append(vols, v.Volume)
		}
	}
	return n, vols
}

func TestCountdownEscalates(t *testing.T) {
	e, clk, log := newTestEngine(t)
	var alerts, timeUps int
	e.StartCountdown(31, func() { alerts++ }, func() { timeUps++ })

	clk.Advance(29 * time.Second)
	if timeUps != 0 || alerts != 4 {
		t.Fatalf("after 29s: alerts=%d timeUps=%d", alerts, timeUps)
	}
	clk.Advance(5 * time.Second)
	if alerts != 5 || timeUps != 1 {
		t.Fatalf("alerts=%d timeUps=%d, want 5 and 1", alerts, timeUps)
	}

	ticks, tickVols := countCues(log, "countdown-urgent")
	if ticks != 5 {
		t.Fatalf("countdown ticks = %d", ticks)
	}
	if !approx(tickVols[0], 0.6*0.7) || !approx(tickVols[4], 0.92*0.7) {
		t.Fatalf("tick volumes = %v", tickVols)
	}
	// soft alerts at 30 and 15, alarms from 5 to 1, and the final alarm
	alarms, alarmVols := countCues(log, "time-alert-intense")
	if alarms != 8 {
		t.Fatalf("alarms = %d", alarms)
	}
	if !approx(alarmVols[0], 1.1*0.8*0.7) || !approx(alarmVols[7], 1.1*2.0*0.7) {
		t.Fatalf("alarm volumes = %v", alarmVols)
	}
}

func TestCountdownCancel(t *testing.T) {
	e, clk, log := newTestEngine(t)
	var alerts, timeUps int
	cancel := e.StartCountdown(8, func() { alerts++ }, func() { timeUps++ })

	clk.Advance(3 * time.Second)
	if alerts != 1 {
		t.Fatalf("alerts = %d", alerts)
	}
	cancel()
	cancel()
	before := len(log.starts())
	clk.Advance(10 * time.Second)
	if alerts != 1 || timeUps != 0 {
		t.Fatalf("countdown kept running: alerts=%d timeUps=%d", alerts, timeUps)
	}
	if len(log.starts()) != before {
		t.Fatal("cancelled countdown started cues")
	}
}
