package service

import (
	"errors"
	"time"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrMinuteNotFound   = errors.New("minute not found")
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrConcernNotFound  = errors.New("prayer concern not found")
	ErrOverrideExists   = errors.New("occurrence already has an override")
	ErrNotAnOccurrence  = errors.New("not a recurring or birthday occurrence")
	ErrNothingToEnhance = errors.New("minute has no notes to enhance")
)

// Live feed names. Services refresh these after every write.
const (
	FeedMembers    = "members"
	FeedEvents     = "events"
	FeedPresets    = "presets"
	FeedCalendar   = "calendar"
	FeedFamilies   = "families"
	FeedMinutes    = "minutes"
	FeedAttendance = "attendance"
	FeedPrayer     = "prayer"
)

// Refresher is told which live feeds went stale. *live.Hub satisfies it.
type Refresher interface {
	Refresh(names ...string)
}

type noRefresh struct{}

func (noRefresh) Refresh(...string) {}

func refresherOrNoop(r Refresher) Refresher {
	if r == nil {
		return noRefresh{}
	}
	return r
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
