// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/ironcore-dev/oom-southbound/internal/metrics"
	"github.com/ironcore-dev/oom-southbound/oom"
)

type ServerHTTP struct {
	client          *oom.Client
	log             logr.Logger
	address         string
	mux             *http.ServeMux
	shutdownTimeout time.Duration
}

// NewServerHTTP creates a new ServerHTTP serving the given client.
func NewServerHTTP(log logr.Logger, client *oom.Client, config ServerConfig) *ServerHTTP {
	server := &ServerHTTP{
		client:          client,
		log:             log,
		address:         fmt.Sprintf("%s:%d", config.Hostname, config.Port),
		mux:             http.NewServeMux(),
		shutdownTimeout: config.ShutdownTimeout,
	}
	server.registerRoutes()
	return server
}

// Handler returns the handler serving all routes.
func (s *ServerHTTP) Handler() http.Handler {
	return s.mux
}

// Start starts the server and shuts it down once ctx is done.
func (s *ServerHTTP) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	server := &http.Server{
		Addr:              s.address,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("Shutting down southbound server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.log.Info("Starting southbound server", "address", s.address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// registerRoutes registers the server's routes.
func (s *ServerHTTP) registerRoutes() {
	s.mux.HandleFunc("/healthz", s.healthzHandler)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/maxports", s.maxPortsHandler)
	s.mux.HandleFunc("/portlist", s.portListHandler)
	s.mux.HandleFunc("/function/get", s.getFunctionHandler)
	s.mux.HandleFunc("/function/set", s.setFunctionHandler)
	s.mux.HandleFunc("/memory/get", s.getMemoryHandler)
	s.mux.HandleFunc("/memory/set", s.setMemoryHandler)
	s.mux.HandleFunc("/memory16/get", s.getMemory16Handler)
	s.mux.HandleFunc("/memory16/set", s.setMemory16Handler)
}

func (s *ServerHTTP) healthzHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *ServerHTTP) maxPortsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	count, err := s.client.MaxPorts(r.Context())
	s.writeJSON(w, MaxPortsResponse{Response: responseFor(err), Count: count})
}

// portListHandler handles /portlist?count=N.
func (s *ServerHTTP) portListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		http.Error(w, "invalid count", http.StatusBadRequest)
		return
	}
	ports, err := s.client.PortList(r.Context(), count)
	s.writeJSON(w, PortListResponse{Response: responseFor(err), Ports: ports})
}

func (s *ServerHTTP) getFunctionHandler(w http.ResponseWriter, r *http.Request) {
	var req FunctionRequest
	if !s.decode(w, r, &req) {
		return
	}
	fn, err := oom.ParseFunction(req.Function)
	if err != nil {
		s.writeJSON(w, FunctionResponse{Response: responseFor(oom.NewAccessError(oom.OpGetFunction, req.Port.Num, err))})
		return
	}
	value, err := s.client.GetFunction(r.Context(), req.Port, fn)
	s.writeJSON(w, FunctionResponse{Response: responseFor(err), Value: value})
}

func (s *ServerHTTP) setFunctionHandler(w http.ResponseWriter, r *http.Request) {
	var req FunctionRequest
	if !s.decode(w, r, &req) {
		return
	}
	fn, err := oom.ParseFunction(req.Function)
	if err != nil {
		s.writeJSON(w, FunctionResponse{Response: responseFor(oom.NewAccessError(oom.OpSetFunction, req.Port.Num, err))})
		return
	}
	err = s.client.SetFunction(r.Context(), req.Port, fn, req.Value)
	s.writeJSON(w, FunctionResponse{Response: responseFor(err), Value: req.Value})
}

func (s *ServerHTTP) getMemoryHandler(w http.ResponseWriter, r *http.Request) {
	var req MemoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	// validate before sizing the buffer from the request
	if err := oom.CheckByteRequest(oom.OpGetMemoryRaw, req.Address, req.Page, req.Offset, req.Length, req.Length); err != nil {
		s.writeJSON(w, MemoryResponse{Response: responseFor(err)})
		return
	}
	buf := make([]byte, req.Length)
	n, err := s.client.GetMemoryRaw(r.Context(), req.Port, req.Address, req.Page, req.Offset, req.Length, buf)
	s.writeJSON(w, MemoryResponse{Response: responseFor(err), Count: n, Data: buf[:n]})
}

func (s *ServerHTTP) setMemoryHandler(w http.ResponseWriter, r *http.Request) {
	var req MemoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.client.SetMemoryRaw(r.Context(), req.Port, req.Address, req.Page, req.Offset, len(req.Data), req.Data)
	s.writeJSON(w, MemoryResponse{Response: responseFor(err), Count: n})
}

func (s *ServerHTTP) getMemory16Handler(w http.ResponseWriter, r *http.Request) {
	var req Memory16Request
	if !s.decode(w, r, &req) {
		return
	}
	if err := oom.CheckWordRequest(oom.OpGetMemoryRaw16, req.Offset, req.Count, req.Count); err != nil {
		s.writeJSON(w, Memory16Response{Response: responseFor(err)})
		return
	}
	buf := make([]uint16, req.Count)
	n, err := s.client.GetMemoryRaw16(r.Context(), req.Port, req.Offset, req.Count, buf)
	s.writeJSON(w, Memory16Response{Response: responseFor(err), Count: n, Data: buf[:n]})
}

func (s *ServerHTTP) setMemory16Handler(w http.ResponseWriter, r *http.Request) {
	var req Memory16Request
	if !s.decode(w, r, &req) {
		return
	}
	n, err := s.client.SetMemoryRaw16(r.Context(), req.Port, req.Offset, len(req.Data), req.Data)
	s.writeJSON(w, Memory16Response{Response: responseFor(err), Count: n})
}

// decode reads the JSON payload of a POST request and reports whether the handler should go on.
func (s *ServerHTTP) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		s.log.V(1).Info("Rejected malformed payload", "path", r.URL.Path, "error", err.Error())
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func (s *ServerHTTP) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error(err, "Failed to write response")
	}
}
