// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package collector

import (
	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/playback"
)

// Play reports that the user or autoplay asked the player to play.
func (c *Collector) Play() {
	c.submit("play", c.machine.Play)
}

// Pause reports a pause request.
func (c *Collector) Pause() {
	c.submit("pause", c.machine.Pause)
}

// Playing reports that frames are being rendered.
func (c *Collector) Playing() {
	c.submit("playing", c.machine.Playing)
}

// Stalled reports that the player ran out of buffer.
func (c *Collector) Stalled() {
	c.submit("stalled", func(pos playback.MediaTime) {
		c.machine.TransitionState(playback.StateBuffering, pos, nil)
	})
}

// Seeked reports a seek started by the player itself.
func (c *Collector) Seeked() {
	c.submit("seeked", func(pos playback.MediaTime) {
		c.machine.TransitionState(playback.StateSeeking, pos, nil)
	})
}

// VideoQualityChange reports a video rendition switch.
func (c *Collector) VideoQualityChange() {
	c.submit("video_quality_change", c.machine.VideoQualityChange)
}

// AudioQualityChange reports an audio rendition switch.
func (c *Collector) AudioQualityChange() {
	c.submit("audio_quality_change", c.machine.AudioQualityChange)
}

// SubtitleChange reports a subtitle track switch and returns to the state
// the player was in.
func (c *Collector) SubtitleChange() {
	c.submit("subtitle_change", func(pos playback.MediaTime) {
		previous := c.machine.State()
		c.machine.TransitionState(playback.StateSubtitleChange, pos, nil)
		c.machine.TransitionState(previous, pos, nil)
	})
}

// Transition forwards an arbitrary state change, such as ad breaks.
func (c *Collector) Transition(dest playback.State) {
	c.submit("transition", func(pos playback.MediaTime) {
		c.machine.TransitionState(dest, pos, nil)
	})
}

// Error reports a player error. An error before the first frame marks the
// session as a start failure caused by the player.
func (c *Collector) Error(code int, message, data string) {
	c.submit("error", func(pos playback.MediaTime) {
		if c.machine.DidAttemptPlayingVideo() && !c.machine.DidStartPlayingVideo() {
			c.machine.SetVideoStartFailed(playback.StartFailedPlayerError)
		}
		c.logger.Warn().
			Str(log.FieldImpressionID, c.machine.ImpressionID()).
			Int(log.FieldErrorCode, code).
			Str(log.FieldErrorMessage, message).
			Msg("player error")
		c.machine.TransitionState(playback.StateError, pos, &playback.ErrorData{
			Code:    code,
			Message: message,
			Data:    data,
		})
	})
}

// WillResignActive pauses the start-failed timeout while the host app is
// in the background.
func (c *Collector) WillResignActive() {
	c.submit("resign_active", func(playback.MediaTime) {
		c.machine.ClearVideoStartFailedTimer()
	})
}

// WillEnterForeground re-arms the start-failed timeout for a session that
// is still waiting for its first frame.
func (c *Collector) WillEnterForeground() {
	c.submit("enter_foreground", func(playback.MediaTime) {
		if c.machine.DidAttemptPlayingVideo() && !c.machine.DidStartPlayingVideo() {
			c.machine.StartVideoStartFailedTimer()
		}
	})
}

// TimeJumped reports a discontinuity in the playback position that may be
// the start of a seek. Jumps within the duplicate tolerance of the pending
// one are ignored.
func (c *Collector) TimeJumped() {
	c.submit("time_jumped", func(pos playback.MediaTime) {
		now := clock.NowMillis(c.clock)
		if now-c.machine.PotentialSeekStart() <= c.seek.DuplicateTolerance.Milliseconds() {
			return
		}
		c.machine.SetPotentialSeek(now, pos)
	})
}

// ReadyToPlay reports that the player can play at the current position.
// A recent time jump after playback started is confirmed as a seek.
func (c *Collector) ReadyToPlay() {
	c.submit("ready_to_play", func(pos playback.MediaTime) {
		start := c.machine.PotentialSeekStart()
		if !c.machine.DidStartPlayingVideo() || start <= 0 {
			return
		}
		if clock.NowMillis(c.clock)-start > c.seek.ConfirmWindow.Milliseconds() {
			return
		}
		c.machine.ConfirmSeek()
		c.machine.TransitionState(playback.StateSeeking, pos, nil)
	})
}

// BitrateObserved reports the indicated bitrate of the newest segment.
// The first value is remembered; any later change counts as a video
// quality change and the machine returns to the state it was in.
func (c *Collector) BitrateObserved(bps float64) {
	c.submit("bitrate", func(pos playback.MediaTime) {
		switch {
		case c.lastBitrate == 0:
			c.lastBitrate = bps
		case c.lastBitrate != bps:
			previous := c.machine.State()
			c.machine.VideoQualityChange(pos)
			c.machine.TransitionState(previous, pos, nil)
			c.lastBitrate = bps
		}
	})
}
