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

package mgmtapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/private/service"
)

// NewStreamsStatusPage returns a status page that renders the streams as a
// table.
func NewStreamsStatusPage(c Controller) service.StatusPage {
	handler := func(w http.ResponseWriter, r *http.Request) {
		streams, err := c.Streams(r.Context())
		if err != nil {
			http.Error(w, "Unable to list streams", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		writeStreams(w, streams)
	}
	return service.StatusPage{
		Info:    "multicast streams",
		Handler: handler,
	}
}

func writeStreams(w io.Writer, streams []streaming.Info) {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			s.ID.String(),
			s.State,
			fmt.Sprintf("%s@%s:%s", s.Source.MAC, s.Source.Node, s.Source.Port),
			strconv.FormatUint(uint64(s.Rate), 10),
			strconv.Itoa(len(s.Clients)),
			strconv.Itoa(len(s.Nodes)),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"STREAM", "STATE", "SOURCE", "RATE", "CLIENTS", "SWITCHES"})
	table.AppendBulk(rows)
	table.Render()
}
