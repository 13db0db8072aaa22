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

package config

const apiSample = `
# The address to serve the management API and the status pages on
# (host:port or ip:port or :port). If not set, the API is disabled.
# (default "")
addr = ""
`

const streamingSample = `
# Rate in kbps of streams whose source does not announce one. (default 1000)
default_rate = 1000
`

const switchingSample = `
# Restrict unicast flows to a single shortest path instead of spreading them
# over all equal-cost shortest paths. (default false)
disable_multipath = false

# Idle timeout of unicast flow entries. (default 5m0s)
idle_timeout = "5m0s"

# Repeated requests for the same destination at the same switch within this
# window reuse the installed flow. (default 1s)
suppress_window = "1s"
`
