// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seeding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HeaderHXRequest marks a request as a partial update.
const HeaderHXRequest = "HX-Request"

const submitTimeout = 10 * time.Second

// Dispatcher is a fire-and-forget Submitter. Each request runs on its own
// goroutine against Handler (in process) or, when Handler is nil, over Client.
// Successful responses are handed to Swap; failures are logged and dropped.
type Dispatcher struct {
	Handler http.Handler
	Client  *http.Client
	// Header is copied onto every request.
	Header http.Header
	Swap   func(req Request, body string)

	wg sync.WaitGroup
}

// Submit starts req in the background.
func (d *Dispatcher) Submit(req Request) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.do(req); err != nil {
			slog.Warn("seeding update failed", "url", req.URL, "error", err)
		}
	}()
}

// Wait blocks until every submitted request has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) do(req Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, strings.NewReader(req.Values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set(HeaderHXRequest, "true")
	for key, values := range d.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	status, body, err := d.roundTrip(httpReq)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("status %d: %s", status, strings.TrimSpace(body))
	}
	if d.Swap != nil {
		d.Swap(req, body)
	}
	return nil
}

func (d *Dispatcher) roundTrip(req *http.Request) (int, string, error) {
	if d.Handler != nil {
		capture := newResponseBuffer()
		d.Handler.ServeHTTP(capture, req)
		return capture.statusCode, capture.body.String(), nil
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

// responseBuffer captures an in-process handler's response.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	headerWrote bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.headerWrote {
		return
	}
	w.headerWrote = true
	w.statusCode = status
}

func (w *responseBuffer) Write(body []byte) (int, error) {
	return w.body.Write(body)
}
