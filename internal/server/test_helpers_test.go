package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"caption-cage/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AppSecret = "test-secret"
	cfg.JudgeTimeoutSeconds = 1
	cfg.SweepIntervalSeconds = 0
	return cfg
}

// stubJudge scores by caption length so tests get distinct, predictable
// totals without the network.
type stubJudge struct {
	err error
}

func (j stubJudge) Score(ctx context.Context, imageURL, caption string) (Score, error) {
	if j.err != nil {
		return Score{}, j.err
	}
	humour := len(caption) % 11
	return Score{
		Humour:    humour,
		Relevance: 5,
		Total:     humour + 5,
		Comment:   "noted",
	}, nil
}

type stubImages struct {
	err error
}

func (s stubImages) Fetch(ctx context.Context) (RoundImage, error) {
	if s.err != nil {
		return RoundImage{}, s.err
	}
	return RoundImage{ID: "img-1", URL: "https://example.test/cat.jpg"}, nil
}

func newGameServer(t *testing.T) *Server {
	t.Helper()
	return New(nil, testConfig()).WithJudge(stubJudge{}).WithImageSource(stubImages{})
}

var errJudgeDown = errors.New("judge down")
