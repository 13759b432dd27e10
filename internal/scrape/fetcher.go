// Package scrape implements the origin-facing half of the ingestion
// pipeline: the bounded concurrent fetcher and the HTML parsers that turn
// taxonomy listings, discovery results and game pages into typed records.
package scrape

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// DocKind names one of the two documents fetched per game.
type DocKind string

// Document kinds used as fetch task keys.
const (
	DocDetail  DocKind = "detail"
	DocReviews DocKind = "reviews"
)

// TaskKey identifies one fetch task. Results are re-keyed by it; completion
// order carries no meaning.
type TaskKey struct {
	GameID int
	Doc    DocKind
}

// Task is one URL to fetch.
type Task struct {
	Key TaskKey
	URL string
}

// Result is the outcome of one fetch task. Exactly one of Body and Err is
// meaningful.
type Result struct {
	Key  TaskKey
	Body []byte
	Err  error
}

// Fetcher fetches single pages from the origin.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Post(ctx context.Context, url string, payload []byte) ([]byte, error)
}

// FetchConfig controls collector behavior.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher implements Fetcher using a Colly collector cloned per
// request over a shared pooled transport.
type CollyFetcher struct {
	cfg  FetchConfig
	base *colly.Collector
}

// NewCollyFetcher builds a CollyFetcher.
func NewCollyFetcher(cfg FetchConfig) *CollyFetcher {
	c := colly.NewCollector(colly.IgnoreRobotsTxt())
	c.WithTransport(newHTTPTransport())
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c.SetRequestTimeout(cfg.Timeout)
	return &CollyFetcher{cfg: cfg, base: c}
}

// Get fetches one page body. A non-2xx response is an error.
func (f *CollyFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return f.run(ctx, url, func(c *colly.Collector) error {
		return c.Visit(url)
	})
}

// Post submits a form-encoded payload and returns the response body.
func (f *CollyFetcher) Post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	return f.run(ctx, url, func(c *colly.Collector) error {
		return c.PostRaw(url, payload)
	})
}

func (f *CollyFetcher) run(ctx context.Context, url string, visit func(*colly.Collector) error) ([]byte, error) {
	collector := f.base.Clone()

	var (
		body     []byte
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		if r.Method == http.MethodPost {
			r.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- visit(collector)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s canceled: %w", url, ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		if body == nil {
			return nil, fmt.Errorf("fetch %s: no response received", url)
		}
		return body, nil
	}
}

// FetchAll runs the tasks through a bounded worker pool and returns one
// result per task, unordered. Per-task failures are reported in the result
// set; they never abort the batch. The bound exists because the origin is
// rate-sensitive.
func FetchAll(ctx context.Context, fetcher Fetcher, tasks []Task, workers int, logger *zap.Logger) []Result {
	if workers <= 0 {
		workers = 100
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan Task)
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				body, err := fetcher.Get(ctx, task.URL)
				if err != nil {
					logger.Warn("page fetch failed",
						zap.Int("game_id", task.Key.GameID),
						zap.String("doc", string(task.Key.Doc)),
						zap.Error(err),
					)
				}
				resultCh <- Result{Key: task.Key, Body: body, Err: err}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(tasks))
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
