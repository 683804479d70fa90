// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timer

import (
	"testing"
	"time"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type inline struct{}

func (inline) Submit(fn func()) { fn() }

// deferred holds submitted fires until flush, emulating a queue that has
// not yet drained when the owner cancels a timer.
type deferred struct{ queued []func() }

func (d *deferred) Submit(fn func()) { d.queued = append(d.queued, fn) }

func (d *deferred) flush() {
	q := d.queued
	d.queued = nil
	for _, fn := range q {
		fn()
	}
}

func TestOneShot_FiresOnce(t *testing.T) {
	c := clock.NewMock(epoch)
	o := NewOneShot(c, inline{}, "test")
	fired := 0

	o.Start(2*time.Second, func() { fired++ })
	require.True(t, o.Active())

	c.Advance(time.Second)
	assert.Equal(t, 0, fired)
	c.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.False(t, o.Active())

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired)
}

func TestOneShot_StartReschedules(t *testing.T) {
	c := clock.NewMock(epoch)
	o := NewOneShot(c, inline{}, "test")
	var firedAt []time.Time

	o.Start(2*time.Second, func() { firedAt = append(firedAt, c.Now()) })
	c.Advance(time.Second)
	o.Start(2*time.Second, func() { firedAt = append(firedAt, c.Now()) })
	c.Advance(5 * time.Second)

	require.Len(t, firedAt, 1)
	assert.Equal(t, epoch.Add(3*time.Second), firedAt[0])
	assert.Equal(t, 0, c.Pending())
}

func TestOneShot_StopIsIdempotent(t *testing.T) {
	c := clock.NewMock(epoch)
	o := NewOneShot(c, inline{}, "test")

	assert.False(t, o.Stop(), "never started")
	o.Start(time.Second, func() { t.Fatal("must not fire") })
	assert.True(t, o.Stop())
	assert.False(t, o.Stop())
	c.Advance(time.Minute)
}

func TestOneShot_StaleFireIsDropped(t *testing.T) {
	c := clock.NewMock(epoch)
	exec := &deferred{}
	o := NewOneShot(c, exec, "test")
	fired := false

	o.Start(time.Second, func() { fired = true })
	c.Advance(time.Second) // released by the clock, parked in the executor
	require.Len(t, exec.queued, 1)

	o.Stop()
	exec.flush()
	assert.False(t, fired)
}

func TestRepeating_FixedInterval(t *testing.T) {
	c := clock.NewMock(epoch)
	r := NewRepeating(c, inline{}, "heartbeat")
	var ticks []time.Time

	r.Start(func() { ticks = append(ticks, c.Now()) }, 10*time.Second)
	c.Advance(35 * time.Second)

	require.Len(t, ticks, 3)
	for i, ts := range ticks {
		assert.Equal(t, epoch.Add(time.Duration(i+1)*10*time.Second), ts)
	}
	assert.True(t, r.Active())
}

func TestRepeating_EscalatingSchedule(t *testing.T) {
	c := clock.NewMock(epoch)
	r := NewRepeating(c, inline{}, "rebuffer")
	var ticks []time.Duration

	r.Start(func() { ticks = append(ticks, c.Now().Sub(epoch)) },
		3*time.Second, 5*time.Second, 10*time.Second, 60*time.Second)
	c.Advance(200 * time.Second)

	assert.Equal(t, []time.Duration{
		3 * time.Second,
		8 * time.Second,
		18 * time.Second,
		78 * time.Second,
		138 * time.Second,
		198 * time.Second,
	}, ticks)
}

func TestRepeating_StopRewindsSchedule(t *testing.T) {
	c := clock.NewMock(epoch)
	r := NewRepeating(c, inline{}, "rebuffer")
	r.Start(func() {}, time.Second, 5*time.Second)

	c.Advance(time.Second)
	assert.Equal(t, 5*time.Second, r.NextInterval())

	assert.True(t, r.Stop())
	assert.False(t, r.Stop())
	assert.False(t, r.Active())
	assert.Equal(t, 0, c.Pending())

	r.Start(func() {}, time.Second, 5*time.Second)
	assert.Equal(t, time.Second, r.NextInterval())
}

func TestRepeating_CallbackMayStop(t *testing.T) {
	c := clock.NewMock(epoch)
	r := NewRepeating(c, inline{}, "test")
	ticks := 0
	r.Start(func() {
		ticks++
		r.Stop()
	}, time.Second)

	c.Advance(10 * time.Second)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 0, c.Pending())
}

func TestRepeating_RejectsInvalidSchedule(t *testing.T) {
	c := clock.NewMock(epoch)
	r := NewRepeating(c, inline{}, "test")

	r.Start(func() {})
	assert.False(t, r.Active())
	r.Start(func() {}, time.Second, 0)
	assert.False(t, r.Active())
}

func TestRepeating_StaleFireIsDropped(t *testing.T) {
	c := clock.NewMock(epoch)
	exec := &deferred{}
	r := NewRepeating(c, exec, "test")
	ticks := 0

	r.Start(func() { ticks++ }, time.Second)
	c.Advance(time.Second)
	require.Len(t, exec.queued, 1)

	r.Start(func() { ticks += 100 }, time.Second)
	exec.flush()
	assert.Equal(t, 0, ticks)

	c.Advance(time.Second)
	exec.flush()
	assert.Equal(t, 100, ticks)
}

func TestEscalating_RestartsAtFirstInterval(t *testing.T) {
	c := clock.NewMock(epoch)
	e := NewEscalating(c, inline{}, "rebuffer-heartbeat", []time.Duration{3 * time.Second, 5 * time.Second})
	fired := 0

	e.Start(func() { fired++ })
	c.Advance(3 * time.Second)
	c.Advance(5 * time.Second)
	require.Equal(t, 2, fired)
	assert.Equal(t, 5*time.Second, e.NextInterval())

	e.Stop()
	e.Start(func() { fired++ })
	assert.Equal(t, 3*time.Second, e.NextInterval())
	c.Advance(3 * time.Second)
	assert.Equal(t, 3, fired)
}
