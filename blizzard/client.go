package blizzard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tnicklin/keystonescan/clock"
	"github.com/tnicklin/keystonescan/logger"
	"github.com/tnicklin/keystonescan/models"
	"github.com/tnicklin/keystonescan/transport"
)

var _ API = (*DefaultClient)(nil)

var errMalformed = errors.New("blizzard: decode")

// DefaultClient calls the Blizzard APIs with a cached client-credentials token.
type DefaultClient struct {
	apiURL   string
	fixedAPI bool
	tokenURL string
	clientID string
	secret   string
	region   models.Region
	locale   models.Locale
	http     *http.Client
	cache    TokenCache
	clock    clock.Clock
	retry    transport.Retry
	logger   logger.Logger

	mu    sync.Mutex
	token Token
}

type Params struct {
	ClientID     string
	ClientSecret string
	Region       models.Region
	Locale       models.Locale
	APIURL       string
	TokenURL     string
	HTTPClient   *http.Client
	Cache        TokenCache
	Clock        clock.Clock
	Retry        transport.Retry
	Logger       logger.Logger
}

func New(p Params) *DefaultClient {
	region := p.Region
	if region == "" {
		region = models.RegionUS
	}
	locale := p.Locale
	if locale == "" {
		locale = models.LocaleEnUS
	}
	apiURL := p.APIURL
	if apiURL == "" {
		apiURL = region.APIHost()
	}
	tokenURL := p.TokenURL
	if tokenURL == "" {
		tokenURL = region.OAuthTokenURL()
	}
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &DefaultClient{
		apiURL:   strings.TrimRight(apiURL, "/"),
		fixedAPI: p.APIURL != "",
		tokenURL: tokenURL,
		clientID: p.ClientID,
		secret:   p.ClientSecret,
		region:   region,
		locale:   locale,
		http:     httpClient,
		cache:    p.Cache,
		clock:    clk,
		retry:    p.Retry,
		logger:   log,
	}
}

// get fetches path from the client's home region.
func (c *DefaultClient) get(ctx context.Context, path, namespace string, out any) error {
	return c.getIn(ctx, c.region, path, namespace, out)
}

// apiHost is the API root serving region. An explicitly configured API URL
// wins over the per-region host.
func (c *DefaultClient) apiHost(region models.Region) string {
	if c.fixedAPI || region == "" {
		return c.apiURL
	}
	return strings.TrimRight(region.APIHost(), "/")
}

// getIn fetches path from region's API host within the region's namespace of
// the given kind and decodes the JSON body into out.
func (c *DefaultClient) getIn(ctx context.Context, region models.Region, path, namespace string, out any) error {
	if region == "" {
		region = c.region
	}
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	endpoint := c.apiHost(region) + path
	query := url.Values{}
	query.Set("locale", string(c.locale))

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Battlenet-Namespace", region.Namespace(namespace))
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := transport.Do(ctx, c.http, "blizzard", build, c.retry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w %s: %w", errMalformed, path, err)
	}
	return nil
}

func (c *DefaultClient) getToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.secret == "" {
		return "", errors.New("blizzard: missing client credentials")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.token.Valid(now) {
		return c.token.AccessToken, nil
	}

	if c.cache != nil {
		cached, ok, err := c.cache.LoadToken(ctx, c.clientID)
		if err != nil {
			c.logger.WarnW("token cache read failed", "error", err)
		} else if ok && cached.Valid(now) {
			c.token = cached
			return cached.AccessToken, nil
		}
	}

	token, err := c.requestToken(ctx, now)
	if err != nil {
		return "", err
	}
	c.token = token

	if c.cache != nil {
		if err := c.cache.SaveToken(ctx, c.clientID, token); err != nil {
			c.logger.WarnW("token cache write failed", "error", err)
		}
	}
	return token.AccessToken, nil
}

func (c *DefaultClient) requestToken(ctx context.Context, now time.Time) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Basic "+credentials)
		return req, nil
	}

	resp, err := transport.Do(ctx, c.http, "blizzard oauth", build, c.retry)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Token{}, err
	}
	if payload.AccessToken == "" {
		return Token{}, errors.New("blizzard: empty access token")
	}

	c.logger.DebugW("obtained blizzard access token", "expires_in", payload.ExpiresIn)
	return Token{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		ExpiresIn:   payload.ExpiresIn,
		IssuedAt:    now,
	}, nil
}
