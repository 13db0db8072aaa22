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

// Package service contains the status pages every binary serves next to its
// metrics.
package service

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/env"
)

const mainTmpl = `
<!DOCTYPE html>
<html>
	<head>
		<title>{{ .ElemID }}</title>
	</head>
	<body style="font-family:sans-serif">
		<h1>{{ .ElemID }}</h1>
		{{ range .Pages }}
		<p><a href="{{ .Path }}">[{{ .Path }}]</a> {{ .Info }}</p>
		{{ end }}
	</body>
</html>
`

type mainData struct {
	ElemID string
	Pages  []pageData
}

type pageData struct {
	Path string
	Info string
}

// StatusPage describes one page served under its name.
type StatusPage struct {
	// Info is a one line description shown on the index page.
	Info string
	// Handler serves the page.
	Handler http.HandlerFunc
}

// StatusPages maps page names to pages.
type StatusPages map[string]StatusPage

// Register registers all pages on mux together with an index page at "/"
// that links them.
func (s StatusPages) Register(mux *http.ServeMux, elemID string) error {
	t, err := template.New("main").Parse(mainTmpl)
	if err != nil {
		return serrors.Wrap("parsing template", err)
	}
	var pages []pageData
	for name, page := range s {
		if strings.Contains(name, " ") {
			return serrors.New("status page name must not contain spaces", "name", name)
		}
		pages = append(pages, pageData{Path: "/" + name, Info: page.Info})
		mux.HandleFunc("/"+name, page.Handler)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	var buf bytes.Buffer
	if err := t.Execute(&buf, mainData{ElemID: elemID, Pages: pages}); err != nil {
		return serrors.Wrap("executing template", err)
	}
	index := buf.Bytes()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(index)
	})
	return nil
}

// NewInfoStatusPage returns a page with version and process information.
func NewInfoStatusPage() StatusPage {
	handler := func(w http.ResponseWriter, r *http.Request) {
		info := env.VersionInfo()
		info += fmt.Sprintf("  pid:           %d\n", os.Getpid())
		info += fmt.Sprintf("  euid/egid:     %d %d\n", os.Geteuid(), os.Getegid())
		info += fmt.Sprintf("  cmd line:      %q\n", os.Args)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, info)
	}
	return StatusPage{
		Info:    "generic information about the process",
		Handler: handler,
	}
}

// NewConfigStatusPage returns a page that renders config as TOML.
func NewConfigStatusPage(config any) StatusPage {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			http.Error(w, "Unable to encode configuration", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, buf.String())
	}
	return StatusPage{
		Info:    "TOML configuration",
		Handler: handler,
	}
}

// NewLogLevelStatusPage returns a page that shows and changes the console
// log level.
func NewLogLevelStatusPage() StatusPage {
	return StatusPage{
		Info:    "logging level (supports PUT)",
		Handler: log.ConsoleLevel.ServeHTTP,
	}
}
