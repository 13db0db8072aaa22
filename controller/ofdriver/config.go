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
	"time"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/pkg/private/util"
	"github.com/sstreaming/sstreaming/private/config"
)

const (
	// DefaultListenAddr is the IANA registered OpenFlow port on all
	// interfaces.
	DefaultListenAddr       = ":6653"
	DefaultEchoInterval     = 5 * time.Second
	DefaultLLDPInterval     = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSendQueue        = 1024
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of the OpenFlow driver.
type Config struct {
	// ListenAddr is the address switches connect to.
	ListenAddr string `toml:"listen_addr,omitempty"`
	// EchoInterval is the keepalive interval. Switches that stay silent for
	// three intervals are disconnected.
	EchoInterval util.DurWrap `toml:"echo_interval,omitempty"`
	// LLDPInterval is the link discovery interval. Links that are not
	// observed for three intervals are removed.
	LLDPInterval     util.DurWrap `toml:"lldp_interval,omitempty"`
	HandshakeTimeout util.DurWrap `toml:"handshake_timeout,omitempty"`
	// SendQueue is the number of messages buffered per switch.
	SendQueue int `toml:"send_queue,omitempty"`
}

// InitDefaults populates unset fields with their defaults.
func (c *Config) InitDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	initDuration(&c.EchoInterval, DefaultEchoInterval)
	initDuration(&c.LLDPInterval, DefaultLLDPInterval)
	initDuration(&c.HandshakeTimeout, DefaultHandshakeTimeout)
	if c.SendQueue == 0 {
		c.SendQueue = DefaultSendQueue
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return serrors.Wrap("invalid listen_addr", err, "addr", c.ListenAddr)
	}
	for name, d := range map[string]util.DurWrap{
		"echo_interval":     c.EchoInterval,
		"lldp_interval":     c.LLDPInterval,
		"handshake_timeout": c.HandshakeTimeout,
	} {
		if d.Duration <= 0 {
			return serrors.New("duration must be positive", "field", name, "value", d)
		}
	}
	if c.SendQueue < 0 {
		return serrors.New("send_queue must not be negative", "value", c.SendQueue)
	}
	return nil
}

// Sample writes a sample configuration block.
func (c *Config) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, sample)
}

// ConfigName returns the name of the config block.
func (c *Config) ConfigName() string {
	return "openflow"
}

func initDuration(d *util.DurWrap, def time.Duration) {
	if d.Duration == 0 {
		d.Duration = def
	}
}

const sample = `
# The address switches connect to. (default ":6653")
listen_addr = ":6653"

# Keepalive interval. Switches silent for three intervals are disconnected.
# (default 5s)
echo_interval = "5s"

# Link discovery interval. Links not observed for three intervals are
# removed. (default 5s)
lldp_interval = "5s"

# Time a switch has to complete the OpenFlow handshake. (default 10s)
handshake_timeout = "10s"

# Number of messages buffered per switch. (default 1024)
send_queue = 1024
`
