// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package southbound carries the OOM Southbound API over HTTP, so a provider
// running next to the hardware can be driven from a remote client.
package southbound

import (
	"time"

	"github.com/ironcore-dev/oom-southbound/oom"
)

// ServerConfig contains the configuration for a southbound server.
type ServerConfig struct {
	// Hostname is the address the server listens on.
	Hostname string

	// Port is the port the server listens on.
	Port int

	// ShutdownTimeout bounds the graceful shutdown of the server.
	ShutdownTimeout time.Duration
}

// ClientConfig contains the configuration for a southbound client.
type ClientConfig struct {
	// ServerURL is the URL of the southbound server.
	ServerURL string

	// CAFile is the path to the CA file for TLS authentication.
	CAFile string

	// CertFile is the path to the client certificate file for TLS authentication.
	CertFile string

	// KeyFile is the path to the client key file for TLS authentication.
	KeyFile string

	// InsecureSkipVerify skips TLS verification.
	InsecureSkipVerify bool
}

// Response is embedded in every response and carries the Southbound status code.
type Response struct {
	// Status is 0 on success and negative on failure.
	Status int `json:"status"`

	// Message describes a failure.
	Message string `json:"message,omitempty"`
}

// MaxPortsResponse is the response of /maxports.
type MaxPortsResponse struct {
	Response
	Count int `json:"count"`
}

// PortListResponse is the response of /portlist.
type PortListResponse struct {
	Response
	Ports []oom.Port `json:"ports,omitempty"`
}

// FunctionRequest is the payload of /function/get and /function/set.
type FunctionRequest struct {
	Port     oom.Port `json:"port"`
	Function string   `json:"function"`
	Value    int      `json:"value,omitempty"`
}

// FunctionResponse is the response of /function/get and /function/set.
type FunctionResponse struct {
	Response
	Value int `json:"value"`
}

// MemoryRequest is the payload of /memory/get and /memory/set. Data is only
// set for writes; reads take the Length.
type MemoryRequest struct {
	Port    oom.Port `json:"port"`
	Address int      `json:"address"`
	Page    int      `json:"page"`
	Offset  int      `json:"offset"`
	Length  int      `json:"length"`
	Data    []byte   `json:"data,omitempty"`
}

// MemoryResponse is the response of /memory/get and /memory/set.
type MemoryResponse struct {
	Response
	Count int    `json:"count"`
	Data  []byte `json:"data,omitempty"`
}

// Memory16Request is the payload of /memory16/get and /memory16/set.
type Memory16Request struct {
	Port   oom.Port `json:"port"`
	Offset int      `json:"offset"`
	Count  int      `json:"count"`
	Data   []uint16 `json:"data,omitempty"`
}

// Memory16Response is the response of /memory16/get and /memory16/set.
type Memory16Response struct {
	Response
	Count int      `json:"count"`
	Data  []uint16 `json:"data,omitempty"`
}

func responseFor(err error) Response {
	if err == nil {
		return Response{Status: oom.StatusOK}
	}
	return Response{Status: oom.StatusOf(err), Message: err.Error()}
}
