// Package postal resolves Indian postal codes through the public
// postalpincode.in API.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

const (
	DefaultBaseURL = "https://api.postalpincode.in"
	defaultTimeout = 5 * time.Second
	maxRetries     = 2
)

// Client implements ports.PostalLookup.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

type apiResult struct {
	Status     string `json:"Status"`
	Message    string `json:"Message"`
	PostOffice []struct {
		Name     string `json:"Name"`
		District string `json:"District"`
		State    string `json:"State"`
	} `json:"PostOffice"`
}

// Lookup returns the post offices for pincode. An unknown code yields an
// empty slice; transport failures and 5xx answers are retried and then
// reported as domain.ErrUpstreamUnavailable.
func (c *Client) Lookup(ctx context.Context, pincode string) ([]domain.PostOffice, error) {
	if !validPincode(pincode) {
		return nil, domain.InvalidField("pincode", "must be 6 digits")
	}

	var results []apiResult
	op := func() error {
		r, err := c.fetch(ctx, pincode)
		if err != nil {
			return err
		}
		results = r
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		c.log.Warn().Err(err).Str("pincode", pincode).Msg("pincode lookup failed")
		return nil, fmt.Errorf("pincode lookup: %w", domain.ErrUpstreamUnavailable)
	}

	offices := []domain.PostOffice{}
	if len(results) == 0 || results[0].Status != "Success" {
		return offices, nil
	}
	for _, po := range results[0].PostOffice {
		offices = append(offices, domain.PostOffice{Name: po.Name, District: po.District, State: po.State})
	}
	return offices, nil
}

func (c *Client) fetch(ctx context.Context, pincode string) ([]apiResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pincode/"+pincode, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	var out []apiResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, backoff.Permanent(errors.Join(errors.New("decode pincode response"), err))
	}
	return out, nil
}

func validPincode(s string) bool {
	if len(s) != 6 || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
