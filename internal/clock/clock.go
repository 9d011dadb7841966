// Package clock abstracts current time so that date defaulting stays pure
// and testable. Production code uses System pinned to the bot's timezone;
// tests inject Fixed.
package clock

import (
	"fmt"
	"time"
)

type Clock interface {
	Now() time.Time
}

type System struct {
	loc *time.Location
}

func NewSystem(timezone string) (System, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return System{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return System{loc: loc}, nil
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
