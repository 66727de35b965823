package cloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"blcsview/internal/feed"
)

func newStore(t *testing.T, objects map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		body, ok := objects[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadSendsFramesAndErrors(t *testing.T) {
	t.Parallel()

	srv := newStore(t, map[string]string{
		"/data/index.json":  `[{"name": "a.csv"}, {"name": "broken.json"}, {"name": "missing.csv"}]`,
		"/data/a.csv":       "Identifier,Temperature\n1,20\n",
		"/data/broken.json": "{",
	})

	ch := feed.New(feed.Options{})
	l := NewLoader(Config{BaseURL: srv.URL + "/data", Token: "secret"}, srv.Client(), ch.Sender(), nil)

	res, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Listed: 3, Sent: 1, Failed: 2}, res)

	frames := ch.DrainFrames()
	require.Len(t, frames, 1)
	require.Equal(t, feed.SourceCloud, frames[0].Source)
	require.Equal(t, "a.csv", frames[0].Topic)
	require.Equal(t, "a", frames[0].Name)

	errs := ch.DrainErrors()
	require.Len(t, errs, 2)
	var pe *feed.ProducerError
	require.True(t, errors.As(errs[1], &pe))
	require.Equal(t, "missing.csv", pe.Topic)
}

func TestLoadPlainIndex(t *testing.T) {
	t.Parallel()

	srv := newStore(t, map[string]string{
		"/index.json": `["x.csv"]`,
		"/x.csv":      "Identifier,Turbidity\n1,0.1\n2,0.2\n",
	})
	ch := feed.New(feed.Options{})
	l := NewLoader(Config{BaseURL: srv.URL, Token: "secret"}, srv.Client(), ch.Sender(), nil)

	res, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, 2, ch.DrainFrames()[0].Frame.Height())
}

func TestLoadIndexFailure(t *testing.T) {
	t.Parallel()

	srv := newStore(t, map[string]string{})
	ch := feed.New(feed.Options{})
	l := NewLoader(Config{BaseURL: srv.URL, Token: "wrong"}, srv.Client(), ch.Sender(), nil)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
	require.Len(t, ch.DrainErrors(), 1)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Parallel()

	l := NewLoader(Config{}, nil, feed.New(feed.Options{}).Sender(), nil)
	_, err := l.Load(context.Background())
	require.Error(t, err)
}

func TestLoadStopsWhenFeedClosed(t *testing.T) {
	t.Parallel()

	srv := newStore(t, map[string]string{
		"/index.json": `["missing-1.csv", "missing-2.csv"]`,
	})
	ch := feed.New(feed.Options{})
	ch.Close()
	l := NewLoader(Config{BaseURL: srv.URL, Token: "secret"}, srv.Client(), ch.Sender(), nil)

	res, err := l.Load(context.Background())
	require.ErrorIs(t, err, feed.ErrClosed)
	require.Equal(t, 1, res.Failed)
}

func TestLoadRejectsOversizedObject(t *testing.T) {
	t.Parallel()

	big := "Identifier,Turbidity\n" + strings.Repeat("1,0.1\n", 20)
	srv := newStore(t, map[string]string{
		"/index.json": `["big.csv", "x.csv"]`,
		"/big.csv":    big,
		"/x.csv":      "Identifier,Turbidity\n1,0.1\n",
	})
	ch := feed.New(feed.Options{})
	l := NewLoader(Config{BaseURL: srv.URL, Token: "secret"}, srv.Client(), ch.Sender(), nil)
	l.maxBytes = 64

	res, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Listed: 2, Sent: 1, Failed: 1}, res)

	errs := ch.DrainErrors()
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrTooLarge)
	require.Equal(t, "x.csv", ch.DrainFrames()[0].Topic)
}
