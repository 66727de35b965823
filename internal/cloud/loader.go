// Package cloud fetches recorded frames from an HTTP object store: an index
// document listing object names, then each object.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
)

// maxObjectBytes caps a single download.
const maxObjectBytes = 64 << 20

// ErrTooLarge is returned for objects over the download cap.
var ErrTooLarge = errors.New("cloud: object too large")

// Config holds store settings.
type Config struct {
	BaseURL string
	// Index is the object listing, a JSON array of names or of
	// {"name": ...} objects, relative to BaseURL.
	Index   string
	Token   string
	Timeout time.Duration
}

// Result summarizes one Load.
type Result struct {
	Listed int
	Sent   int
	Failed int
}

// Loader downloads every listed object into a feed.
type Loader struct {
	cfg    Config
	client *http.Client
	sender feed.Sender
	logger *slog.Logger
	// maxBytes caps each download; objects over it fail with ErrTooLarge.
	maxBytes int64
}

// NewLoader creates a loader. client may be nil.
func NewLoader(cfg Config, client *http.Client, sender feed.Sender, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Index == "" {
		cfg.Index = "index.json"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cfg:      cfg,
		client:   client,
		sender:   sender,
		logger:   logger.With("component", "cloud"),
		maxBytes: maxObjectBytes,
	}
}

// Spawn runs Load on its own goroutine.
func (l *Loader) Spawn(ctx context.Context) {
	go func() {
		if _, err := l.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("cloud load failed", "error", err)
		}
	}()
}

// Load fetches the index then every object in it. Per-object failures go to
// the feed's error stream and do not stop the run. The returned error is
// set when the index itself cannot be read or the feed went away.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	var res Result
	if l.cfg.BaseURL == "" {
		return res, errors.New("cloud: base url not configured")
	}
	names, err := l.index(ctx)
	if err != nil {
		_ = l.sender.SendError(&feed.ProducerError{Source: feed.SourceCloud, Topic: l.cfg.Index, Err: err})
		return res, err
	}
	res.Listed = len(names)
	l.logger.Info("cloud index fetched", "objects", len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := l.fetch(ctx, name); err != nil {
			res.Failed++
			if sendErr := l.sender.SendError(&feed.ProducerError{Source: feed.SourceCloud, Topic: name, Err: err}); errors.Is(sendErr, feed.ErrClosed) {
				return res, sendErr
			}
			continue
		}
		res.Sent++
	}
	return res, nil
}

func (l *Loader) fetch(ctx context.Context, name string) error {
	body, err := l.get(ctx, name)
	if err != nil {
		return err
	}
	lf, err := codec.Decode(name, body)
	if err != nil {
		return err
	}
	return l.sender.SendFrame(feed.Delivery{
		Frame:   lf.Frame,
		Source:  feed.SourceCloud,
		Topic:   name,
		Name:    lf.Meta.Name,
		Version: lf.Meta.Version,
	})
}

type indexEntry struct {
	Name string `json:"name"`
}

func (l *Loader) index(ctx context.Context) ([]string, error) {
	body, err := l.get(ctx, l.cfg.Index)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(body, &names); err == nil {
		return names, nil
	}
	var entries []indexEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	names = make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

func (l *Loader) resolve(name string) (string, error) {
	base, err := url.Parse(strings.TrimSuffix(l.cfg.BaseURL, "/") + "/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(name)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func (l *Loader) get(ctx context.Context, name string) ([]byte, error) {
	u, err := l.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if l.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+l.cfg.Token)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("GET %s: %w (over %d bytes)", u, ErrTooLarge, l.maxBytes)
	}
	return body, nil
}
