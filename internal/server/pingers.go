package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// vectorStorePinger probes the knowledge-base vector store for /ready.
type vectorStorePinger struct {
	name string
	ping func(ctx context.Context) error
}

// NewStorePinger wraps a store's Ping method as a named readiness probe.
// name appears in the /ready response (e.g. "qdrant", "memory").
func NewStorePinger(name string, ping func(ctx context.Context) error) Pinger {
	return &vectorStorePinger{name: name, ping: ping}
}

func (p *vectorStorePinger) Name() string { return p.name }

func (p *vectorStorePinger) Ping(ctx context.Context) error {
	if err := p.ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// httpPinger probes an HTTP endpoint (e.g. the Ollama host serving the chat
// model and embeddings) and reports healthy on any response, regardless of
// status code: a 404 from the root path still proves the process is up.
type httpPinger struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPPinger builds a readiness probe against baseURL. The probe issues a
// GET to the host root and only fails on transport errors.
func NewHTTPPinger(name, baseURL string) (Pinger, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("server: invalid ping URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server: ping URL %q must include scheme and host", baseURL)
	}

	probe := *u
	probe.Path = "/"
	probe.RawQuery = ""

	return &httpPinger{
		name:   name,
		url:    probe.String(),
		client: &http.Client{},
	}, nil
}

func (p *httpPinger) Name() string { return p.name }

func (p *httpPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
