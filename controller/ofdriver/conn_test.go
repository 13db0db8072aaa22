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

package ofdriver

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnSendQueueFull(t *testing.T) {
	switchSide, controllerSide := net.Pipe()
	defer switchSide.Close()
	c := newConn(controllerSide, 0x42, nil, 1)

	require.NoError(t, c.send([]byte{1}))
	assert.ErrorIs(t, c.send([]byte{2}), ErrQueueFull)

	// The overflow tears the connection down so that the switch reconnects
	// and is programmed from scratch.
	select {
	case <-c.closed:
	default:
		t.Fatal("connection not closed after overflow")
	}
	_, err := switchSide.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, c.send([]byte{3}), ErrNotConnected)
}
