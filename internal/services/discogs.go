// Discogs API implementation of [Service]
//
// Response types based on https://www.discogs.com/developers
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultDiscogsBaseURL   = "https://api.discogs.com"
	defaultDiscogsUserAgent = "MixedTaper/1.0"
	defaultPerPage          = 100
	defaultTimeout          = 30 * time.Second
	discogsTokenType        = "Discogs"
)

// DiscogsOptions configures a [DiscogsService].
type DiscogsOptions struct {
	BaseURL   string
	UserAgent string
	UserID    string
	Token     string
	PerPage   int
	Timeout   time.Duration
	Limiter   *rate.Limiter     // nil uses 60 requests per minute
	Transport http.RoundTripper // nil uses [http.DefaultTransport]
}

// DiscogsOptionsFromConfig maps the [discogs] and [credentials.discogs] config sections to options.
func DiscogsOptionsFromConfig(cfg *shared.Config) DiscogsOptions {
	return DiscogsOptions{
		BaseURL:   cfg.Discogs.BaseURL,
		UserAgent: cfg.Discogs.UserAgent,
		UserID:    cfg.Credentials.Discogs.UserID,
		Token:     cfg.Credentials.Discogs.Token,
		PerPage:   cfg.Discogs.PerPage,
		Timeout:   cfg.Discogs.Timeout(),
		Limiter:   NewLimiter(cfg.Discogs.RequestsPerMinute),
	}
}

// NewLimiter returns a limiter allowing requestsPerMinute requests with a burst of one.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// DiscogsService implements [Service] against the Discogs REST API.
//
// Requests carry the personal access token through an [oauth2.Transport] and wait on a shared [rate.Limiter].
type DiscogsService struct {
	baseURL    string
	userAgent  string
	userID     string
	perPage    int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewDiscogsService creates a Discogs client. The user id and token are required.
func NewDiscogsService(opts DiscogsOptions) (*DiscogsService, error) {
	creds := shared.DiscogsCredentials{UserID: opts.UserID, Token: opts.Token}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if opts.BaseURL == "" {
		opts.BaseURL = defaultDiscogsBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultDiscogsUserAgent
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaultPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter(60)
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	token := &oauth2.Token{TokenType: discogsTokenType, AccessToken: "token=" + opts.Token}
	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   opts.Transport,
		},
	}

	return &DiscogsService{
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		userID:     opts.UserID,
		perPage:    opts.PerPage,
		limiter:    opts.Limiter,
		httpClient: client,
	}, nil
}

func (d *DiscogsService) Name() string {
	return "Discogs"
}

// PerPage returns the page size used for collection requests.
func (d *DiscogsService) PerPage() int {
	return d.perPage
}

// HTTPClient returns the authenticated client, e.g. for image downloads.
func (d *DiscogsService) HTTPClient() *http.Client {
	return d.httpClient
}

// doRequest performs a rate-limited GET against the Discogs API and decodes the JSON body into result.
//
// A 404 wraps [shared.ErrNotFound]. Every other failure wraps [shared.ErrUpstreamUnavailable].
func (d *DiscogsService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", shared.ErrUpstreamUnavailable, err)
	}

	apiURL := d.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrUpstreamUnavailable, err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: discogs API error (status %d): %s", shared.ErrUpstreamUnavailable, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: discogs API error: status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrUpstreamUnavailable, err)
		}
	}

	return nil
}

// CollectionPage fetches one page of folder 0 (all releases).
//
// Calls GET /users/{user}/collection/folders/0/releases?per_page=N&page=P
func (d *DiscogsService) CollectionPage(ctx context.Context, page int) (*CollectionPage, error) {
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("/users/%s/collection/folders/0/releases", url.PathEscape(d.userID))
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(d.perPage))
	query.Set("page", strconv.Itoa(page))

	var result CollectionPage
	if err := d.doRequest(ctx, endpoint, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Master fetches a master record.
//
// Calls GET /masters/{id}
func (d *DiscogsService) Master(ctx context.Context, masterID int64) (*Master, error) {
	var result Master
	if err := d.doRequest(ctx, fmt.Sprintf("/masters/%d", masterID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Release fetches a release with its track listing and videos.
//
// Calls GET /releases/{id}
func (d *DiscogsService) Release(ctx context.Context, releaseID int64) (*ReleaseDetail, error) {
	var result ReleaseDetail
	if err := d.doRequest(ctx, fmt.Sprintf("/releases/%d", releaseID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
