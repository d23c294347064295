package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/wifi-billing/internal/model"
)

// Provider delivers reminder notifications to customers.
type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	Notify(ctx context.Context, r model.Reminder) error
}

// HTTPProvider POSTs the reminder as JSON to baseURL+path behind a MicroBreaker.
type HTTPProvider struct {
	name    string
	baseURL string
	path    string
	client  *http.Client
	br      *MicroBreaker
}

func NewHTTPProvider(name, baseURL, path string, timeoutMs, failThreshold, openForMs int) *HTTPProvider {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &HTTPProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:      NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Ready() bool { return p.br.Ready() }

func (p *HTTPProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *HTTPProvider) Notify(ctx context.Context, r model.Reminder) error {
	if err := p.post(ctx, r); err != nil {
		p.br.OnFailure()
		return err
	}

	p.br.OnSuccess()

	return nil
}

func (p *HTTPProvider) post(ctx context.Context, r model.Reminder) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+p.path, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s path=%s status=%d", p.name, p.path, res.StatusCode)
	}

	return nil
}
