// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit provides a process-global, per-provider-role rate
// limiter: one token per fixed interval, no burst, no windowed counters.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Key identifies a single rate-limited channel: a provider dispatching
// one role's worth of calls (e.g. "anthropic/summary", "openai/writing").
type Key struct {
	Provider string
	Role     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Provider, k.Role)
}

// Manager hands out one limiter per Key, creating it on first use with the
// interval supplied at that time. Subsequent calls for the same Key ignore
// the interval argument and reuse the existing limiter — intervals are a
// per-provider constant, not something that changes at runtime.
type Manager struct {
	mu       sync.Mutex
	limiters map[Key]*rate.Limiter
}

// NewManager creates an empty limiter manager.
func NewManager() *Manager {
	return &Manager{limiters: make(map[Key]*rate.Limiter)}
}

func (m *Manager) limiterFor(key Key, interval time.Duration) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Every(interval), 1)
	m.limiters[key] = l
	return l
}

// Wait blocks until a token is available for key, or ctx is cancelled.
// interval is only consulted the first time key is seen.
func (m *Manager) Wait(ctx context.Context, key Key, interval time.Duration) error {
	return m.limiterFor(key, interval).Wait(ctx)
}
