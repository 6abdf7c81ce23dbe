// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegerTransport "github.com/uber/jaeger-client-go/transport"
)

// placeholderHost is a dummy hostname put into the host component of a URL
// before the collector host has been determined.
const placeholderHost = "some.tracing.collector.localhost"

// newTransport returns a jaeger.Transport that sends traces to one of the given
// collectors. It moves to another collector when the current one isn't
// working.
func newTransport(collectors []string) jaeger.Transport {
	roundTripper := &collectorProxy{
		collectors:    append([]string(nil), collectors...),
		baseTransport: http.DefaultTransport.RoundTrip,
		intn:          rand.Intn,
	}
	url := "http://" + placeholderHost + "/api/traces?format=jaeger.thrift"
	return jaegerTransport.NewHTTPTransport(url,
		jaegerTransport.HTTPRoundTripper(roundTripper))
}

// A collectorProxy is an http.RoundTripper that allows a client to connect to
// different servers over time.
type collectorProxy struct {
	// host:port endpoints of the collectors.
	collectors []string
	// Set to http.DefaultTransport.RoundTrip, except for testing.
	baseTransport func(req *http.Request) (*http.Response, error)
	// Set to rand.Intn, except for testing.
	intn func(n int) int
	// Protects locked.
	lock sync.Mutex
	// Protected by lock.
	locked struct {
		// The host:port of the current server in use, or "" if none.
		hostPort string
		// If non-nil, the current server's last request failed with this error.
		lastErr error
		// When the last successful request completed. If there hasn't been one,
		// when the connection was started.
		lastSuccess time.Time
	}
}

// RoundTrip implements the method defined in http.RoundTripper.
func (proxy *collectorProxy) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != placeholderHost {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("tracing: Jaeger client tried to reach unexpected host: %v",
			req.URL.Host)
	}
	hostPort, err := proxy.getHostPort()
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	// RoundTrip may not modify the given 'req'.
	url2 := *req.URL
	url2.Host = hostPort
	req2 := req.Clone(req.Context())
	req2.URL = &url2
	resp, err := proxy.baseTransport(req2)
	if err == nil {
		if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
			proxy.report(hostPort, errors.New(resp.Status))
		} else {
			proxy.report(hostPort, nil)
		}
	} else {
		proxy.report(hostPort, err)
	}
	return resp, err
}

// getHostPort returns the best server to send a request to, or an error if no
// servers are known.
func (proxy *collectorProxy) getHostPort() (string, error) {
	proxy.lock.Lock()
	defer proxy.lock.Unlock()

	if proxy.locked.hostPort != "" {
		if proxy.locked.lastErr == nil ||
			time.Since(proxy.locked.lastSuccess) < 10*time.Second {
			return proxy.locked.hostPort, nil
		}
	}

	others := make([]string, 0, len(proxy.collectors))
	for _, hp := range proxy.collectors {
		if hp != proxy.locked.hostPort {
			others = append(others, hp)
		}
	}
	if len(others) == 0 {
		if proxy.locked.hostPort == "" {
			return "", errNoServer
		}
		// Stick with current endpoint.
		return proxy.locked.hostPort, nil
	}

	newHostPort := others[proxy.intn(len(others))]
	now := time.Now()
	log.WithFields(log.Fields{
		"lastError":                     proxy.locked.lastErr,
		"timeSinceLastConnectOrSuccess": now.Sub(proxy.locked.lastSuccess),
		"oldCollector":                  proxy.locked.hostPort,
		"newCollector":                  newHostPort,
	}).Info("Switching Jaeger servers")
	proxy.locked.hostPort = newHostPort
	proxy.locked.lastErr = nil
	proxy.locked.lastSuccess = now
	return newHostPort, nil
}

var errNoServer = errors.New("no Jaeger collector configured")

// report updates the state based on a response from hostPort. Pass a nil error
// if successful or a non-nil error otherwise.
func (proxy *collectorProxy) report(hostPort string, err error) {
	proxy.lock.Lock()
	defer proxy.lock.Unlock()
	if proxy.locked.hostPort == hostPort {
		if err == nil {
			proxy.locked.lastSuccess = time.Now()
		}
		proxy.locked.lastErr = err
	}
}
