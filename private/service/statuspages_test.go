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

package service_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstreaming/sstreaming/private/env"
	"github.com/sstreaming/sstreaming/private/service"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestStatusPages(t *testing.T) {
	cfg := struct {
		General env.General `toml:"general"`
	}{General: env.General{ID: "ctrl-1"}}

	mux := http.NewServeMux()
	pages := service.StatusPages{
		"info":   service.NewInfoStatusPage(),
		"config": service.NewConfigStatusPage(cfg),
	}
	require.NoError(t, pages.Register(mux, "ctrl-1"))

	code, body := get(t, mux, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "ctrl-1")
	assert.Contains(t, body, "/config")
	assert.Contains(t, body, "/info")

	code, body = get(t, mux, "/config")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "id = 'ctrl-1'")

	code, body = get(t, mux, "/info")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "pid:")

	code, _ = get(t, mux, "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatusPagesRejectsSpaces(t *testing.T) {
	pages := service.StatusPages{"bad name": service.NewInfoStatusPage()}
	assert.Error(t, pages.Register(http.NewServeMux(), "x"))
}
