package pagequery

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrStatusNotOK is returned when a page fetch had status different than 200 OK.
var ErrStatusNotOK = errors.New("response status is not 200 OK")

const defaultPollInterval = time.Second

// LivePage is a Page backed by repeated HTTP fetches of one URL. Mutation
// notifications are emitted whenever a refetch returns a body with a
// different content hash.
type LivePage struct {
	client       *resty.Client
	url          string
	pollInterval time.Duration
}

// NewLivePage returns a Page over url fetched with client.
func NewLivePage(client *resty.Client, url string) *LivePage {
	return &LivePage{
		client:       client,
		url:          url,
		pollInterval: defaultPollInterval,
	}
}

// URL returns the page's address.
func (p *LivePage) URL() string {
	return p.url
}

// Snapshot fetches and parses the page's current document.
func (p *LivePage) Snapshot(ctx context.Context) (Document, error) {
	body, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	return FromReader(bytes.NewReader(body))
}

// Mutations polls the page and emits whenever its content hash changes.
// The stream is closed when ctx ends.
func (p *LivePage) Mutations(ctx context.Context) (<-chan struct{}, error) {
	initial, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	notifications := make(chan struct{}, 1)
	go p.poll(ctx, contentHash(initial), notifications)

	return notifications, nil
}

func (p *LivePage) poll(ctx context.Context, lastHash uint64, notifications chan<- struct{}) {
	defer close(notifications)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		body, err := p.fetch(ctx)
		if err != nil {
			continue
		}

		hash := contentHash(body)
		if hash == lastHash {
			continue
		}
		lastHash = hash

		select {
		case notifications <- struct{}{}:
		default:
			// notification already pending
		}
	}
}

func (p *LivePage) fetch(ctx context.Context) ([]byte, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(p.url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, ErrStatusNotOK
	}

	return resp.Body(), nil
}

func contentHash(body []byte) uint64 {
	hash := fnv.New64a()
	_, _ = hash.Write(body)
	return hash.Sum64()
}
