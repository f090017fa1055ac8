package domain

import "time"

// DunningChannel is the contact channel for a dunning step.
type DunningChannel string

const (
	ChannelEmail DunningChannel = "email"
	ChannelSMS   DunningChannel = "sms"
)

// DunningStatus tracks a scheduled contact attempt. The only transitions are
// pending -> sent and pending -> failed; a failed step is re-driven by an
// operator, never automatically.
type DunningStatus string

const (
	DunningPending DunningStatus = "pending"
	DunningSent    DunningStatus = "sent"
	DunningFailed  DunningStatus = "failed"
)

// CanTransitionTo reports whether moving from s to next is allowed.
func (s DunningStatus) CanTransitionTo(next DunningStatus) bool {
	return s == DunningPending && (next == DunningSent || next == DunningFailed)
}

// DunningEvent is one scheduled contact attempt within a dunning sequence for
// a failed invoice. (TenantID, InvoiceID, Step, Channel) is unique.
type DunningEvent struct {
	ID        string
	TenantID  string
	InvoiceID string
	Step      int
	Channel   DunningChannel
	Status    DunningStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DunningStep is one position in a dunning schedule.
type DunningStep struct {
	Step    int
	Channel DunningChannel
}

// DunningSchedule is a versioned, ordered sequence of contact steps. The
// schedule is declared once and shared by every enqueue call; evolving it
// means declaring a new version.
type DunningSchedule struct {
	Version int
	Steps   []DunningStep
}

// DefaultDunningSchedule is the v1 retry sequence: email, then SMS, then a
// final email.
var DefaultDunningSchedule = DunningSchedule{
	Version: 1,
	Steps: []DunningStep{
		{Step: 1, Channel: ChannelEmail},
		{Step: 2, Channel: ChannelSMS},
		{Step: 3, Channel: ChannelEmail},
	},
}
