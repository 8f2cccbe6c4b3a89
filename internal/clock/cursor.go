/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package clock provides the time cursors each schedule track advances.
//
// All arithmetic is in whole minutes on naive wall-clock time. Instants are
// stored as UTC values and never converted between zones.
package clock

import "time"

// Cursor is a mutable point in time owned by a single track.
type Cursor struct {
	t time.Time
}

// New returns a cursor positioned at t, truncated to the minute.
func New(t time.Time) *Cursor {
	return &Cursor{t: t.Truncate(time.Minute)}
}

// At returns a cursor for the given wall-clock date and time of day.
func At(date time.Time, hour, minute int) *Cursor {
	return New(time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC))
}

// Current returns a copy of the cursor's instant.
func (c *Cursor) Current() time.Time {
	return c.t
}

// Set moves the cursor to t.
func (c *Cursor) Set(t time.Time) {
	c.t = t.Truncate(time.Minute)
}

// Advance moves the cursor forward. Negative values move it backwards.
func (c *Cursor) Advance(minutes int) {
	c.t = c.t.Add(time.Duration(minutes) * time.Minute)
}

// Retreat moves the cursor backwards. Negative values move it forwards.
func (c *Cursor) Retreat(minutes int) {
	c.Advance(-minutes)
}

// Fork returns an independent cursor at the same instant.
func (c *Cursor) Fork() *Cursor {
	return &Cursor{t: c.t}
}

// Before reports whether c is strictly earlier than t.
func (c *Cursor) Before(t time.Time) bool {
	return c.t.Before(t)
}

// PullTo moves the cursor forward to t when it is behind. It reports whether
// the cursor moved.
func (c *Cursor) PullTo(t time.Time) bool {
	if c.t.Before(t) {
		c.t = t
		return true
	}
	return false
}

// MinutesUntil returns the whole minutes from the cursor to t.
func (c *Cursor) MinutesUntil(t time.Time) int {
	return int(t.Sub(c.t) / time.Minute)
}

// Later returns the later of two instants.
func Later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
