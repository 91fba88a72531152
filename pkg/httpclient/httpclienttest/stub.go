// Package httpclienttest provides an in-memory httpclient.Client for tests.
package httpclienttest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/Adda-Baaj/seithi/pkg/httpclient"
)

// ErrUnrouted is returned for URLs without a registered route.
var ErrUnrouted = errors.New("httpclienttest: no route")

// Reply is a canned response.
type Reply struct {
	Status int
	Body   string
	Err    error
}

type response struct {
	status int
	body   []byte
}

func (r response) StatusCode() int { return r.status }
func (r response) Body() []byte    { return r.body }

// Stub routes requests by exact URL first, then by longest registered prefix.
type Stub struct {
	mu       sync.Mutex
	exact    map[string][]Reply
	prefixes map[string]Reply
	calls    []string
	fallback *Reply
}

// New returns an empty Stub. Unrouted requests fail with ErrUnrouted.
func New() *Stub {
	return &Stub{
		exact:    make(map[string][]Reply),
		prefixes: make(map[string]Reply),
	}
}

// On registers a reply for an exact URL. Multiple replies for the same URL are served in order,
// the last one repeating.
func (s *Stub) On(url string, r Reply) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exact[url] = append(s.exact[url], r)
	return s
}

// HTML registers a 200 text/html reply.
func (s *Stub) HTML(url, body string) *Stub {
	return s.On(url, Reply{Status: http.StatusOK, Body: body})
}

// Prefix registers a reply for every URL starting with prefix.
func (s *Stub) Prefix(prefix string, r Reply) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes[prefix] = r
	return s
}

// Otherwise sets the reply used when nothing else matches.
func (s *Stub) Otherwise(r Reply) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &r
	return s
}

// Calls returns every requested URL in order.
func (s *Stub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsWithPrefix counts requests whose URL starts with prefix.
func (s *Stub) CallsWithPrefix(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (s *Stub) Get(ctx context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	return s.Do(ctx, http.MethodGet, url, headers, nil)
}

func (s *Stub) Do(ctx context.Context, _ string, url string, _ map[string]string, _ []byte) (httpclient.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, url)
	r, ok := s.lookup(url)
	s.mu.Unlock()

	if !ok {
		return nil, ErrUnrouted
	}
	if r.Err != nil {
		return nil, r.Err
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	return response{status: status, body: []byte(r.Body)}, nil
}

func (s *Stub) lookup(url string) (Reply, bool) {
	if replies, ok := s.exact[url]; ok && len(replies) > 0 {
		r := replies[0]
		if len(replies) > 1 {
			s.exact[url] = replies[1:]
		}
		return r, true
	}
	best := ""
	for p := range s.prefixes {
		if strings.HasPrefix(url, p) && len(p) > len(best) {
			best = p
		}
	}
	if best != "" {
		return s.prefixes[best], true
	}
	if s.fallback != nil {
		return *s.fallback, true
	}
	return Reply{}, false
}
