package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ImageSource provides the shared image for a round.
type ImageSource interface {
	Fetch(ctx context.Context) (RoundImage, error)
}

type RoundImage struct {
	ID  string
	URL string
}

type catAPISource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newCatAPISource(baseURL, apiKey string) *catAPISource {
	return &catAPISource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type catAPIEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *catAPISource) Fetch(ctx context.Context) (RoundImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return RoundImage{}, fmt.Errorf("failed to build image request")
	}
	if strings.TrimSpace(c.apiKey) != "" {
		req.Header.Set("x-api-key", strings.TrimSpace(c.apiKey))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return RoundImage{}, fmt.Errorf("failed to reach image source")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RoundImage{}, fmt.Errorf("failed to read image response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RoundImage{}, fmt.Errorf("image request failed (%d)", resp.StatusCode)
	}
	var entries []catAPIEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return RoundImage{}, fmt.Errorf("failed to parse image response")
	}
	if len(entries) == 0 || entries[0].URL == "" {
		return RoundImage{}, errors.New("image source returned no images")
	}
	return RoundImage{ID: entries[0].ID, URL: entries[0].URL}, nil
}

// fetchRoundImage never fails a round start. When the source is down the
// round runs against the configured placeholder.
func (s *Server) fetchRoundImage(ctx context.Context) RoundImage {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	image, err := s.images.Fetch(fetchCtx)
	if err != nil {
		log.Warn().Err(err).Msg("image fetch failed, using placeholder")
		return RoundImage{ID: "placeholder", URL: s.cfg.PlaceholderImageURL}
	}
	return image
}
