// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/ironcore-dev/oom-southbound/oom"
)

// ClientHTTP is a Provider backed by a remote southbound server.
type ClientHTTP struct {
	*http.Client
	serverURL string
}

var _ oom.Provider = &ClientHTTP{}

func NewClientHTTP(config ClientConfig) (*ClientHTTP, error) {
	tlsConfig := &tls.Config{}
	if config.CertFile != "" && config.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if config.CAFile != "" {
		caCert, err := os.ReadFile(config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCertPool := x509.NewCertPool()
		caCertPool.AppendCertsFromPEM(caCert)
		tlsConfig.RootCAs = caCertPool
	}

	tlsConfig.InsecureSkipVerify = config.InsecureSkipVerify

	transport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{Transport: transport}
	return &ClientHTTP{
		Client:    httpClient,
		serverURL: strings.TrimSuffix(config.ServerURL, "/"),
	}, nil
}

// WaitForServer polls /healthz until the server answers or the timeout expires.
func (c *ClientHTTP) WaitForServer(ctx context.Context, interval, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/healthz", nil)
		if err != nil {
			return false, err
		}
		resp, err := c.Do(req)
		if err != nil {
			return false, nil
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		return resp.StatusCode == http.StatusOK, nil
	})
}

func (c *ClientHTTP) MaxPorts(ctx context.Context) (int, error) {
	var resp MaxPortsResponse
	if err := c.do(ctx, http.MethodGet, "maxports", nil, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpMaxPorts, -1, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpMaxPorts, -1, resp.Message); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *ClientHTTP) GetPortList(ctx context.Context, ports []oom.Port) (int, error) {
	var resp PortListResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("portlist?count=%d", len(ports)), nil, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpGetPortList, -1, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpGetPortList, -1, resp.Message); err != nil {
		return 0, err
	}
	return copy(ports, resp.Ports), nil
}

func (c *ClientHTTP) GetFunction(ctx context.Context, port oom.Port, fn oom.Function) (int, error) {
	var resp FunctionResponse
	req := FunctionRequest{Port: port, Function: fn.String()}
	if err := c.do(ctx, http.MethodPost, "function/get", req, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpGetFunction, port.Num, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpGetFunction, port.Num, resp.Message); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

func (c *ClientHTTP) SetFunction(ctx context.Context, port oom.Port, fn oom.Function, value int) error {
	var resp FunctionResponse
	req := FunctionRequest{Port: port, Function: fn.String(), Value: value}
	if err := c.do(ctx, http.MethodPost, "function/set", req, &resp); err != nil {
		return oom.NewAccessError(oom.OpSetFunction, port.Num, err)
	}
	return oom.ErrorForStatus(resp.Status, oom.OpSetFunction, port.Num, resp.Message)
}

func (c *ClientHTTP) GetMemoryRaw(ctx context.Context, port oom.Port, address, page, offset int, data []byte) (int, error) {
	var resp MemoryResponse
	req := MemoryRequest{Port: port, Address: address, Page: page, Offset: offset, Length: len(data)}
	if err := c.do(ctx, http.MethodPost, "memory/get", req, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpGetMemoryRaw, port.Num, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpGetMemoryRaw, port.Num, resp.Message); err != nil {
		return 0, err
	}
	return copy(data, resp.Data), nil
}

func (c *ClientHTTP) SetMemoryRaw(ctx context.Context, port oom.Port, address, page, offset int, data []byte) (int, error) {
	var resp MemoryResponse
	req := MemoryRequest{Port: port, Address: address, Page: page, Offset: offset, Length: len(data), Data: data}
	if err := c.do(ctx, http.MethodPost, "memory/set", req, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpSetMemoryRaw, port.Num, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpSetMemoryRaw, port.Num, resp.Message); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *ClientHTTP) GetMemoryRaw16(ctx context.Context, port oom.Port, offset int, data []uint16) (int, error) {
	var resp Memory16Response
	req := Memory16Request{Port: port, Offset: offset, Count: len(data)}
	if err := c.do(ctx, http.MethodPost, "memory16/get", req, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpGetMemoryRaw16, port.Num, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpGetMemoryRaw16, port.Num, resp.Message); err != nil {
		return 0, err
	}
	return copy(data, resp.Data), nil
}

func (c *ClientHTTP) SetMemoryRaw16(ctx context.Context, port oom.Port, offset int, data []uint16) (int, error) {
	var resp Memory16Response
	req := Memory16Request{Port: port, Offset: offset, Count: len(data), Data: data}
	if err := c.do(ctx, http.MethodPost, "memory16/set", req, &resp); err != nil {
		return 0, oom.NewAccessError(oom.OpSetMemoryRaw16, port.Num, err)
	}
	if err := oom.ErrorForStatus(resp.Status, oom.OpSetMemoryRaw16, port.Num, resp.Message); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *ClientHTTP) do(ctx context.Context, method, path string, payload, result any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/%s", c.serverURL, path), &body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
