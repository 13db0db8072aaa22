// Copyright 2020 Anapaya Systems
// Copyright 2026 The sStreaming Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package worker contains helpers for long running components that are
// started with Run and stopped with Close.
package worker

import (
	"context"
	"sync"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// Base takes care of the bookkeeping of a Run/Close pair:
//
//   - Run may be called at most once. A second call returns an error.
//   - Close may be called any number of times and from any goroutine. Only
//     the first call has an effect; it returns once Run has returned.
//   - Close before Run makes the later Run return immediately.
//
// The run function should return once the channel from GetDoneChan is
// closed. The zero value is ready to use.
type Base struct {
	mtx         sync.Mutex
	runCalled   bool
	closeCalled bool
	// doneCh is closed when Close is called.
	doneCh chan struct{}
	// stoppedCh is closed when Run returns.
	stoppedCh chan struct{}
}

// RunWrapper runs setup and then run. Either may be nil.
func (b *Base) RunWrapper(ctx context.Context, setup, run func(context.Context) error) error {
	b.mtx.Lock()
	if b.runCalled {
		b.mtx.Unlock()
		return serrors.New("function invoked multiple times")
	}
	b.runCalled = true
	b.init()
	closed := b.closeCalled
	b.mtx.Unlock()

	defer close(b.stoppedCh)
	if closed {
		return nil
	}
	if setup != nil {
		if err := setup(ctx); err != nil {
			return serrors.Wrap("setting up", err)
		}
	}
	if run == nil {
		return nil
	}
	return run(ctx)
}

// CloseWrapper signals the run function to stop, runs closeFn and waits for
// Run to return. closeFn may be nil.
func (b *Base) CloseWrapper(ctx context.Context, closeFn func(context.Context) error) error {
	b.mtx.Lock()
	if b.closeCalled {
		b.mtx.Unlock()
		return nil
	}
	b.closeCalled = true
	b.init()
	close(b.doneCh)
	running := b.runCalled
	b.mtx.Unlock()

	var err error
	if closeFn != nil {
		err = closeFn(ctx)
	}
	if running {
		<-b.stoppedCh
	}
	return err
}

// GetDoneChan returns a channel that is closed when Close is called.
func (b *Base) GetDoneChan() <-chan struct{} {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.init()
	return b.doneCh
}

func (b *Base) init() {
	if b.doneCh == nil {
		b.doneCh = make(chan struct{})
		b.stoppedCh = make(chan struct{})
	}
}
