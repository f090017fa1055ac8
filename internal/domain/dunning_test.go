package domain

import "testing"

func TestDefaultDunningSchedule(t *testing.T) {
	if DefaultDunningSchedule.Version != 1 {
		t.Errorf("expected schedule version 1, got %d", DefaultDunningSchedule.Version)
	}

	want := []DunningStep{
		{Step: 1, Channel: ChannelEmail},
		{Step: 2, Channel: ChannelSMS},
		{Step: 3, Channel: ChannelEmail},
	}

	if len(DefaultDunningSchedule.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(DefaultDunningSchedule.Steps))
	}

	for i, step := range DefaultDunningSchedule.Steps {
		if step != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, step, want[i])
		}
	}
}

func TestDunningStatusTransitions(t *testing.T) {
	tests := []struct {
		from DunningStatus
		to   DunningStatus
		want bool
	}{
		{DunningPending, DunningSent, true},
		{DunningPending, DunningFailed, true},
		{DunningSent, DunningFailed, false},
		{DunningFailed, DunningPending, false},
		{DunningSent, DunningPending, false},
		{DunningPending, DunningPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
