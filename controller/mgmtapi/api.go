// Copyright 2021 Anapaya Systems
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

// Package mgmtapi implements the HTTP management API of the controller.
package mgmtapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sstreaming/sstreaming/controller"
	"github.com/sstreaming/sstreaming/controller/streaming"
	"github.com/sstreaming/sstreaming/controller/switching"
	"github.com/sstreaming/sstreaming/pkg/addr"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/private/service"
	"github.com/sstreaming/sstreaming/private/topology"
)

// Problem types.
const (
	BadRequest    = "/problems/bad-request"
	NotFound      = "/problems/not-found"
	Conflict      = "/problems/conflict"
	Unavailable   = "/problems/unavailable"
	InternalError = "/problems/internal-error"
)

// Controller is the controller as seen by the API.
type Controller interface {
	SourceEnter(ctx context.Context, id addr.StreamID, src streaming.Source, rate uint32) error
	SourceLeave(ctx context.Context, id addr.StreamID) error
	ClientEnter(ctx context.Context, id addr.StreamID, mac addr.MAC, node addr.DPID,
		port addr.Port) error
	ClientLeave(ctx context.Context, id addr.StreamID, mac addr.MAC, node addr.DPID,
		port addr.Port) error
	BandwidthChange(ctx context.Context, id addr.StreamID, node addr.DPID, rate uint32) error
	Nodes(ctx context.Context) ([]controller.Node, error)
	Links(ctx context.Context) ([]topology.Link, error)
	Hosts(ctx context.Context) ([]controller.Host, error)
	Streams(ctx context.Context) ([]streaming.Info, error)
	FailedStreams(ctx context.Context) ([]addr.StreamID, error)
	Flows(ctx context.Context) ([]switching.Flow, error)
	TriggerHostDiscovery(ctx context.Context) (int, error)
}

// Problem is an RFC 7807 problem detail.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// SourceRequest registers a stream source.
type SourceRequest struct {
	MAC  addr.MAC  `json:"mac"`
	Node addr.DPID `json:"node"`
	Port addr.Port `json:"port"`
	// Rate in kbps, 0 for the configured default.
	Rate uint32 `json:"rate,omitempty"`
}

// ClientRequest subscribes a client to a stream.
type ClientRequest struct {
	MAC  addr.MAC  `json:"mac"`
	Node addr.DPID `json:"node"`
	Port addr.Port `json:"port"`
}

// BandwidthRequest sets the rate of a stream at a switch.
type BandwidthRequest struct {
	Rate uint32 `json:"rate"`
}

// DiscoveryResponse is the result of a host discovery trigger.
type DiscoveryResponse struct {
	Probes int `json:"probes"`
}

// Server implements the management API.
type Server struct {
	Controller Controller
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/nodes", s.GetNodes)
	r.Get("/links", s.GetLinks)
	r.Get("/hosts", s.GetHosts)
	r.Post("/hosts/discovery", s.TriggerHostDiscovery)
	r.Get("/flows", s.GetFlows)
	r.Get("/streams", s.GetStreams)
	r.Get("/streams/failed", s.GetFailedStreams)
	r.Put("/streams/{stream}/source", s.PutSource)
	r.Delete("/streams/{stream}/source", s.DeleteSource)
	r.Post("/streams/{stream}/clients", s.PostClient)
	r.Delete("/streams/{stream}/clients/{mac}/{node}/{port}", s.DeleteClient)
	r.Put("/streams/{stream}/bandwidth/{node}", s.PutBandwidth)
}

// NewHandler returns the handler serving the API under /api/v1 and the
// status pages under /.
func NewHandler(s *Server, pages service.StatusPages, elemID string) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
	}))
	r.Route("/api/v1", s.Routes)
	mux := http.NewServeMux()
	if err := pages.Register(mux, elemID); err != nil {
		return nil, err
	}
	r.Mount("/", mux)
	return r, nil
}

// GetNodes lists the switches.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.Controller.Nodes(r.Context())
	respond(w, r, nodes, err, "error listing nodes")
}

// GetLinks lists the links.
func (s *Server) GetLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.Controller.Links(r.Context())
	respond(w, r, links, err, "error listing links")
}

// GetHosts lists the hosts.
func (s *Server) GetHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := s.Controller.Hosts(r.Context())
	respond(w, r, hosts, err, "error listing hosts")
}

// GetFlows lists the unicast flows.
func (s *Server) GetFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.Controller.Flows(r.Context())
	respond(w, r, flows, err, "error listing flows")
}

// GetStreams lists the streams.
func (s *Server) GetStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := s.Controller.Streams(r.Context())
	respond(w, r, streams, err, "error listing streams")
}

// GetFailedStreams lists the streams that could not be routed.
func (s *Server) GetFailedStreams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Controller.FailedStreams(r.Context())
	if ids == nil {
		ids = []addr.StreamID{}
	}
	respond(w, r, ids, err, "error listing failed streams")
}

// TriggerHostDiscovery probes all host ports.
func (s *Server) TriggerHostDiscovery(w http.ResponseWriter, r *http.Request) {
	n, err := s.Controller.TriggerHostDiscovery(r.Context())
	respond(w, r, DiscoveryResponse{Probes: n}, err, "error triggering host discovery")
}

// PutSource registers the source of a stream.
func (s *Server) PutSource(w http.ResponseWriter, r *http.Request) {
	id, ok := streamParam(w, r)
	if !ok {
		return
	}
	var req SourceRequest
	if !decode(w, r, &req) {
		return
	}
	src := streaming.Source{MAC: req.MAC, Node: req.Node, Port: req.Port}
	err := s.Controller.SourceEnter(r.Context(), id, src, req.Rate)
	respondEmpty(w, r, err, "error registering source")
}

// DeleteSource removes a stream.
func (s *Server) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, ok := streamParam(w, r)
	if !ok {
		return
	}
	respondEmpty(w, r, s.Controller.SourceLeave(r.Context(), id), "error removing source")
}

// PostClient subscribes a client to a stream.
func (s *Server) PostClient(w http.ResponseWriter, r *http.Request) {
	id, ok := streamParam(w, r)
	if !ok {
		return
	}
	var req ClientRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.Controller.ClientEnter(r.Context(), id, req.MAC, req.Node, req.Port)
	respondEmpty(w, r, err, "error adding client")
}

// DeleteClient unsubscribes a client from a stream.
func (s *Server) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := streamParam(w, r)
	if !ok {
		return
	}
	mac, err := addr.ParseMAC(chi.URLParam(r, "mac"))
	if err != nil {
		badRequest(w, "invalid mac", err)
		return
	}
	node, ok := nodeParam(w, r)
	if !ok {
		return
	}
	port, err := strconv.ParseUint(chi.URLParam(r, "port"), 10, 32)
	if err != nil {
		badRequest(w, "invalid port", err)
		return
	}
	err = s.Controller.ClientLeave(r.Context(), id, mac, node, addr.Port(port))
	respondEmpty(w, r, err, "error removing client")
}

// PutBandwidth sets the rate of a stream at a switch.
func (s *Server) PutBandwidth(w http.ResponseWriter, r *http.Request) {
	id, ok := streamParam(w, r)
	if !ok {
		return
	}
	node, ok := nodeParam(w, r)
	if !ok {
		return
	}
	var req BandwidthRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.Controller.BandwidthChange(r.Context(), id, node, req.Rate)
	respondEmpty(w, r, err, "error changing bandwidth")
}

func streamParam(w http.ResponseWriter, r *http.Request) (addr.StreamID, bool) {
	id, err := addr.ParseStreamID(chi.URLParam(r, "stream"))
	if err != nil {
		badRequest(w, "invalid stream id", err)
		return 0, false
	}
	return id, true
}

func nodeParam(w http.ResponseWriter, r *http.Request) (addr.DPID, bool) {
	node, err := addr.ParseDPID(chi.URLParam(r, "node"))
	if err != nil {
		badRequest(w, "invalid node", err)
		return 0, false
	}
	return node, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid request body", err)
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, title string, err error) {
	ErrorResponse(w, Problem{
		Type:   BadRequest,
		Title:  title,
		Status: http.StatusBadRequest,
		Detail: err.Error(),
	})
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error, title string) {
	if err != nil {
		controllerError(w, r, err, title)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		log.FromCtx(r.Context()).Info("Failed to write response", "err", err)
	}
}

func respondEmpty(w http.ResponseWriter, r *http.Request, err error, title string) {
	if err != nil {
		controllerError(w, r, err, title)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func controllerError(w http.ResponseWriter, r *http.Request, err error, title string) {
	p := Problem{
		Type:   InternalError,
		Title:  title,
		Status: http.StatusInternalServerError,
		Detail: err.Error(),
	}
	switch {
	case errors.Is(err, streaming.ErrUnknownStream):
		p.Type, p.Status = NotFound, http.StatusNotFound
	case errors.Is(err, streaming.ErrDuplicateStream):
		p.Type, p.Status = Conflict, http.StatusConflict
	case errors.Is(err, controller.ErrStopped):
		p.Type, p.Status = Unavailable, http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.Type, p.Status = Unavailable, http.StatusServiceUnavailable
	default:
		log.FromCtx(r.Context()).Info(title, "err", err)
	}
	ErrorResponse(w, p)
}

// ErrorResponse writes a problem response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// The status is already sent, encoding errors cannot be reported.
	_ = enc.Encode(p)
}
