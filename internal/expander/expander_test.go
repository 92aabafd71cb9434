package expander

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/xxxsen/embiggen/internal/shortener"
	"github.com/xxxsen/embiggen/internal/transport"
)

type stubReply struct {
	status   int
	location string
	err      error
}

type stubHeadClient struct {
	mu       sync.Mutex
	replies  map[string]stubReply
	calls    []string
	deadline []time.Duration
}

func newStubHeadClient() *stubHeadClient {
	return &stubHeadClient{replies: make(map[string]stubReply)}
}

func (s *stubHeadClient) redirect(from, to string) *stubHeadClient {
	s.replies[from] = stubReply{status: http.StatusMovedPermanently, location: to}
	return s
}

func (s *stubHeadClient) reply(from string, r stubReply) *stubHeadClient {
	s.replies[from] = r
	return s
}

func (s *stubHeadClient) String() string { return "stub" }

func (s *stubHeadClient) Head(ctx context.Context, u *url.URL) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, u.String())
	if dl, ok := ctx.Deadline(); ok {
		s.deadline = append(s.deadline, time.Until(dl))
	}
	r, ok := s.replies[u.String()]
	if !ok {
		return nil, errors.New("unexpected request to " + u.String())
	}
	if r.err != nil {
		return nil, r.err
	}
	return &transport.Response{StatusCode: r.status, Location: r.location}, nil
}

func (s *stubHeadClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

func newTestExpander(client transport.IHeadClient, set shortener.ISet) *Expander {
	cfg := DefaultConfig()
	if set != nil {
		cfg.Shorteners = set
	}
	return New(WithConfig(cfg), WithHeadClient(client))
}

func chain(s *stubHeadClient, n int) *stubHeadClient {
	for i := 1; i < n; i++ {
		s.redirect("http://bit.ly/"+itoa(i), "http://bit.ly/"+itoa(i+1))
	}
	return s
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestExpandHTTPAndHTTPS(t *testing.T) {
	tests := []struct {
		name  string
		short string
		long  string
	}{
		{"http", "http://bit.ly/1ciyUPh", "http://us.macmillan.com/books/9781466879980"},
		{"https", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=youtu.be"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newStubHeadClient().redirect(tc.short, tc.long)
			e := newTestExpander(client, nil)

			if got := e.Expand(context.Background(), mustURL(t, tc.short)); got.String() != tc.long {
				t.Fatalf("Expand = %s, want %s", got, tc.long)
			}
			got, err := e.ExpandStrict(context.Background(), mustURL(t, tc.short))
			if err != nil {
				t.Fatalf("ExpandStrict error: %v", err)
			}
			if got.String() != tc.long {
				t.Fatalf("ExpandStrict = %s, want %s", got, tc.long)
			}
		})
	}
}

func TestUnshortenedURIMakesNoRequests(t *testing.T) {
	client := newStubHeadClient()
	e := newTestExpander(client, nil)
	u := mustURL(t, "http://www.altmetric.com")

	if got := e.Expand(context.Background(), u); got != u {
		t.Fatalf("expected input returned unchanged, got %s", got)
	}
	got, err := e.ExpandStrict(context.Background(), u)
	if err != nil || got != u {
		t.Fatalf("ExpandStrict = %v, %v", got, err)
	}
	if client.callCount() != 0 {
		t.Fatalf("expected no requests, got %v", client.calls)
	}
}

func TestExpandIsIdempotentOnFinalURI(t *testing.T) {
	client := newStubHeadClient().redirect("https://youtu.be/X", "https://www.youtube.com/watch?v=X")
	e := newTestExpander(client, nil)

	first := e.Expand(context.Background(), mustURL(t, "https://youtu.be/X"))
	second := e.Expand(context.Background(), first)
	if second.String() != first.String() {
		t.Fatalf("second expansion changed the result: %s != %s", second, first)
	}
	if client.callCount() != 1 {
		t.Fatalf("expected one request, got %d", client.callCount())
	}
}

func TestExpandRedirectsToOtherShorteners(t *testing.T) {
	client := newStubHeadClient().
		redirect("http://bit.ly/98K8eH", "https://youtu.be/dQw4w9WgXcQ").
		redirect("https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=youtu.be")
	e := newTestExpander(client, nil)

	got := e.Expand(context.Background(), mustURL(t, "http://bit.ly/98K8eH"))
	if got.String() != "https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=youtu.be" {
		t.Fatalf("unexpected expansion %s", got)
	}
}

func TestExpandRelativeLocation(t *testing.T) {
	client := newStubHeadClient().
		redirect("http://bit.ly/a", "/b").
		redirect("http://bit.ly/b", "https://www.altmetric.com/details")
	e := newTestExpander(client, nil)

	got, err := e.ExpandStrict(context.Background(), mustURL(t, "http://bit.ly/a"))
	if err != nil {
		t.Fatalf("ExpandStrict error: %v", err)
	}
	if got.String() != "https://www.altmetric.com/details" {
		t.Fatalf("unexpected expansion %s", got)
	}
}

func TestExpandStopsAtDefaultThreshold(t *testing.T) {
	client := chain(newStubHeadClient(), 7)
	e := newTestExpander(client, nil)

	if got := e.Expand(context.Background(), mustURL(t, "http://bit.ly/1")); got.String() != "http://bit.ly/6" {
		t.Fatalf("Expand = %s, want http://bit.ly/6", got)
	}
	if client.callCount() != DefaultRedirects {
		t.Fatalf("expected %d requests, got %d", DefaultRedirects, client.callCount())
	}
}

func TestRedirectBudget(t *testing.T) {
	client := chain(newStubHeadClient(), 4)
	e := newTestExpander(client, nil)
	u := mustURL(t, "http://bit.ly/1")

	_, err := e.ExpandStrict(context.Background(), u, WithRedirects(2))
	var tmr *TooManyRedirectsError
	if !errors.As(err, &tmr) {
		t.Fatalf("expected TooManyRedirectsError, got %v", err)
	}
	if tmr.URI.String() != "http://bit.ly/3" {
		t.Fatalf("expected error to carry http://bit.ly/3, got %s", tmr.URI)
	}
	if tmr.Error() != "http://bit.ly/3 redirected too many times" {
		t.Fatalf("unexpected message %q", tmr.Error())
	}
	if KindOf(err) != KindTooManyRedirects {
		t.Fatalf("unexpected kind %s", KindOf(err))
	}
	if got := e.Expand(context.Background(), u, WithRedirects(2)); got.String() != "http://bit.ly/3" {
		t.Fatalf("Expand = %s, want http://bit.ly/3", got)
	}
}

func TestZeroBudgetMakesNoRequest(t *testing.T) {
	client := chain(newStubHeadClient(), 3)
	e := newTestExpander(client, nil)

	_, err := e.ExpandStrict(context.Background(), mustURL(t, "http://bit.ly/1"), WithRedirects(0))
	var tmr *TooManyRedirectsError
	if !errors.As(err, &tmr) || tmr.URI.String() != "http://bit.ly/1" {
		t.Fatalf("expected TooManyRedirectsError on http://bit.ly/1, got %v", err)
	}
	if client.callCount() != 0 {
		t.Fatalf("expected no requests, got %d", client.callCount())
	}
}

func TestBudgetFromConfiguration(t *testing.T) {
	client := chain(newStubHeadClient(), 4)
	cfg := DefaultConfig()
	cfg.Redirects = 2
	e := New(WithConfig(cfg), WithHeadClient(client))

	if got := e.Expand(context.Background(), mustURL(t, "http://bit.ly/1")); got.String() != "http://bit.ly/3" {
		t.Fatalf("Expand = %s, want http://bit.ly/3", got)
	}
}

func TestShortenersFromConfiguration(t *testing.T) {
	client := newStubHeadClient().redirect("http://altmetric.it", "http://www.altmetric.com")
	e := newTestExpander(client, shortener.NewSuffixSet("custom", "bit.ly", "altmetric.it"))

	if got := e.Expand(context.Background(), mustURL(t, "http://altmetric.it")); got.String() != "http://www.altmetric.com" {
		t.Fatalf("Expand = %s", got)
	}
}

func TestFailuresFallBackToOriginal(t *testing.T) {
	tests := []struct {
		name  string
		reply stubReply
	}{
		{"server error", stubReply{status: http.StatusInternalServerError}},
		{"timeout", stubReply{err: context.DeadlineExceeded}},
		{"connection reset", stubReply{err: syscall.ECONNRESET}},
		{"host unreachable", stubReply{err: syscall.EHOSTUNREACH}},
		{"name not known", stubReply{err: errors.New("lookup bit.ly: no such host")}},
		{"redirect without location", stubReply{status: http.StatusFound}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newStubHeadClient().
				redirect("http://bit.ly/start", "http://bit.ly/bad").
				reply("http://bit.ly/bad", tc.reply)
			e := newTestExpander(client, nil)
			u := mustURL(t, "http://bit.ly/start")

			if got := e.Expand(context.Background(), u); got != u {
				t.Fatalf("expected original input, got %s", got)
			}
		})
	}
}

func TestExpandStrictPropagatesTransportErrors(t *testing.T) {
	for _, want := range []error{context.DeadlineExceeded, syscall.ECONNRESET} {
		client := newStubHeadClient().reply("http://bit.ly/bad", stubReply{err: want})
		e := newTestExpander(client, nil)

		_, err := e.ExpandStrict(context.Background(), mustURL(t, "http://bit.ly/bad"))
		if err != want {
			t.Fatalf("expected %v unchanged, got %v", want, err)
		}
		if KindOf(err) != KindTransport {
			t.Fatalf("unexpected kind %s", KindOf(err))
		}
	}
}

func TestExpandStrictBadShortenedURI(t *testing.T) {
	client := newStubHeadClient().reply("http://bit.ly/bad", stubReply{status: http.StatusInternalServerError})
	e := newTestExpander(client, nil)

	_, err := e.ExpandStrict(context.Background(), mustURL(t, "http://bit.ly/bad"))
	var bad *BadShortenedURIError
	if !errors.As(err, &bad) {
		t.Fatalf("expected BadShortenedURIError, got %v", err)
	}
	if bad.Error() != "following http://bit.ly/bad did not redirect" {
		t.Fatalf("unexpected message %q", bad.Error())
	}
	if KindOf(err) != KindBadShortenedURI {
		t.Fatalf("unexpected kind %s", KindOf(err))
	}
}

func TestAllShortenedMode(t *testing.T) {
	client := newStubHeadClient().
		redirect("http://altmetric.it", "http://www.altmetric.com").
		reply("http://www.altmetric.com", stubReply{status: http.StatusOK}).
		reply("http://bit.ly/bad", stubReply{status: http.StatusInternalServerError})
	e := newTestExpander(client, shortener.All())

	if got := e.Expand(context.Background(), mustURL(t, "http://altmetric.it")); got.String() != "http://www.altmetric.com" {
		t.Fatalf("Expand = %s", got)
	}
	got, err := e.ExpandStrict(context.Background(), mustURL(t, "http://bit.ly/bad"))
	if err != nil {
		t.Fatalf("non redirecting response must not fail in all mode: %v", err)
	}
	if got.String() != "http://bit.ly/bad" {
		t.Fatalf("ExpandStrict = %s", got)
	}
}

func TestTimeoutOption(t *testing.T) {
	client := newStubHeadClient().redirect("http://bit.ly/1", "http://example.com")
	e := newTestExpander(client, nil)

	e.Expand(context.Background(), mustURL(t, "http://bit.ly/1"), WithTimeout(5*time.Second))
	if len(client.deadline) != 1 {
		t.Fatalf("expected a deadline on the request")
	}
	if d := client.deadline[0]; d > 5*time.Second || d < 4*time.Second {
		t.Fatalf("unexpected request deadline %s", d)
	}

	e.Expand(context.Background(), mustURL(t, "http://bit.ly/1"))
	if d := client.deadline[1]; d > DefaultTimeout || d < DefaultTimeout-time.Second {
		t.Fatalf("unexpected default deadline %s", d)
	}
}

func TestShortened(t *testing.T) {
	e := newTestExpander(newStubHeadClient(), nil)
	tests := []struct {
		raw  string
		want bool
	}{
		{"http://bit.ly/1ciyUPh", true},
		{"http://BIT.LY/1ciyUPh", true},
		{"http://bit.ly:8080/1ciyUPh?x=1", true},
		{"http://www.altmetric.com", false},
		{"http://notbit.ly/1ciyUPh", false},
		{"/relative/path", false},
	}
	for _, tc := range tests {
		if got := e.Shortened(mustURL(t, tc.raw)); got != tc.want {
			t.Errorf("Shortened(%s) = %t, want %t", tc.raw, got, tc.want)
		}
	}

	all := newTestExpander(newStubHeadClient(), shortener.All())
	for _, raw := range []string{"http://bit.ly/1ciyUPh", "http://www.altmetric.com"} {
		if !all.Shortened(mustURL(t, raw)) {
			t.Errorf("expected %s to be shortened in all mode", raw)
		}
	}
}

func TestNewNormalizesConfig(t *testing.T) {
	e := New(WithConfig(Config{Redirects: -3}))
	cfg := e.Config()
	if cfg.Redirects != 0 || cfg.Timeout != DefaultTimeout || cfg.Shorteners == nil {
		t.Fatalf("unexpected normalized config %+v", cfg)
	}
	if _, err := e.ExpandStrict(context.Background(), nil); err == nil {
		t.Fatalf("expected nil url error")
	}
	if e.Expand(context.Background(), nil) != nil {
		t.Fatalf("expected nil result for nil input")
	}
}
