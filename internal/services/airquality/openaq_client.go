package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

var ErrUnexpectedStatus = errors.New("air quality API returned unexpected status")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// latestResponse mirrors the subset of the OpenAQ "latest" payload we read.
type latestResponse struct {
	Results []struct {
		Location     string `json:"location"`
		Measurements []struct {
			Parameter string  `json:"parameter"`
			Value     float64 `json:"value"`
			Unit      string  `json:"unit"`
		} `json:"measurements"`
	} `json:"results"`
}

// ClientOpenAQ fetches the latest pollutant readings for a city.
type ClientOpenAQ struct {
	APIKey string
	apiURL string
	client HTTPClient
	logger zerolog.Logger
}

func NewClientOpenAQ(apiKey, apiURL string, httpClient HTTPClient, logger zerolog.Logger) *ClientOpenAQ {
	return &ClientOpenAQ{
		APIKey: apiKey,
		apiURL: apiURL,
		client: httpClient,
		logger: logger.With().Str("component", "ClientOpenAQ").Logger(),
	}
}

// Fetch returns pollutant -> value for the city. Readings are applied in the
// order the API lists them, so a parameter reported by several locations keeps
// the value of the last one. A payload without "results" yields an empty map.
func (s *ClientOpenAQ) Fetch(ctx context.Context, city string) (map[string]float64, error) {
	start := time.Now()

	reqURL, err := s.buildURL(city)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("city", city).
		Str("url", reqURL).
		Msg("starting OpenAQ request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("city", city).
			Msg("failed to create HTTP request")
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("X-API-Key", s.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("city", city).
			Msg("error sending HTTP request to OpenAQ")
		return nil, fmt.Errorf("openaq request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().
				Err(cerr).
				Str("city", city).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Ctx(ctx).
			Str("city", city).
			Str("status", resp.Status).
			Msg("OpenAQ API returned non-200 status")
		return nil, fmt.Errorf("%w: status %s", ErrUnexpectedStatus, resp.Status)
	}

	var raw latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("city", city).
			Msg("failed to decode OpenAQ response")
		return nil, fmt.Errorf("decode openaq response: %w", err)
	}

	results := make(map[string]float64)
	for _, location := range raw.Results {
		for _, m := range location.Measurements {
			results[m.Parameter] = m.Value
		}
	}

	s.logger.Info().
		Ctx(ctx).
		Str("city", city).
		Int("locations", len(raw.Results)).
		Int("parameters", len(results)).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched air quality data")

	return results, nil
}

func (s *ClientOpenAQ) buildURL(city string) (string, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return "", fmt.Errorf("parse air quality URL: %w", err)
	}
	q := u.Query()
	q.Set("city", city)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
