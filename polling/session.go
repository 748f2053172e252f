// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package polling runs the main cycle: check for a tag on every tick and,
// when one is found, identify it, sweep its blocks and release it.
package polling

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-mfrc522/tagops"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session owns the polling cycle of one reader. Tick and Run must be
// called from a single goroutine; State and Metrics are safe anywhere.
type Session struct {
	ops       *tagops.Operations
	config    *Config
	log       logrus.FieldLogger
	callbacks Callbacks

	state            atomic.Int32
	pollCycles       atomic.Int64
	sessions         atomic.Int64
	incompatibleTags atomic.Int64
	releaseErrors    atomic.Int64
	lastDuration     atomic.Int64
}

// NewSession creates a polling session. A nil config uses DefaultConfig
// and a nil log discards diagnostics.
func NewSession(ops *tagops.Operations, config *Config, log logrus.FieldLogger) (*Session, error) {
	if ops == nil {
		return nil, errors.New("operations cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	cfg := *config
	return &Session{
		ops:    ops,
		config: &cfg,
		log:    log,
	}, nil
}

// SetCallbacks replaces the session callbacks. Call it before Run.
func (s *Session) SetCallbacks(callbacks Callbacks) {
	s.callbacks = callbacks
}

// State returns the current state of the cycle
func (s *Session) State() State {
	return State(s.state.Load())
}

// Metrics returns the counters of the cycle
func (s *Session) Metrics() Metrics {
	return Metrics{
		PollCycles:          s.pollCycles.Load(),
		Sessions:            s.sessions.Load(),
		IncompatibleTags:    s.incompatibleTags.Load(),
		ReleaseErrors:       s.releaseErrors.Load(),
		LastSessionDuration: time.Duration(s.lastDuration.Load()),
	}
}

// Tick checks once for a new tag and, if there is one, handles it
// completely before returning. It reports whether a session took place.
func (s *Session) Tick(ctx context.Context) bool {
	s.pollCycles.Add(1)

	if !s.ops.DetectTag(ctx) {
		return false
	}

	s.state.Store(int32(StateSession))
	defer s.state.Store(int32(StateIdle))

	// a started session is never interrupted
	ctx = context.WithoutCancel(ctx)

	id := uuid.NewString()
	log := s.log.WithField("session", id)
	start := time.Now()
	s.sessions.Add(1)

	info, err := s.ops.Identify()
	if err != nil {
		log.WithError(err).Warn("selected tag could not be identified")
		return false
	}
	log = log.WithFields(logrus.Fields{"uid": info.UIDString, "type": info.Type.String()})
	log.Debug("session started")

	if s.callbacks.OnSessionStart != nil {
		s.callbacks.OnSessionStart(id, info)
	}

	result := SessionResult{ID: id, Info: info}
	if info.Compatible {
		s.ops.Sweep(ctx, s.config.Payload, s.config.Key)
		result.Swept = true
	} else {
		s.incompatibleTags.Add(1)
		log.Info("incompatible tag, sweep skipped")
	}

	if err := s.ops.Release(ctx); err != nil {
		s.releaseErrors.Add(1)
		result.ReleaseErr = err
		log.WithError(err).Warn("failed to release tag")
	}

	result.Duration = time.Since(start)
	s.lastDuration.Store(int64(result.Duration))
	log.WithField("duration", result.Duration).Debug("session ended")

	if s.callbacks.OnSessionEnd != nil {
		s.callbacks.OnSessionEnd(result)
	}
	return true
}

// Run ticks every PollInterval until ctx is cancelled. Cancellation is the
// normal way to stop and returns nil.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.log.WithField("interval", s.config.PollInterval).Debug("polling started")
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("polling stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
