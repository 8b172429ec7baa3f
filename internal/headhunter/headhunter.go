package headhunter

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL      = "https://api.hh.ru"
	mineResumID = "mine"
	userAgent   = "spigell/hh-scout (spigelly@gmail.com)"
	// Max value for per_page.
	perPage = "100"

	// DefaultRequestInterval is the minimal gap between two requests to hh.ru.
	DefaultRequestInterval = 200 * time.Millisecond
	// DefaultRetryDelay is how long the client waits after 429 before the single retry.
	DefaultRetryDelay = time.Second
)

type Client struct {
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	retryDelay time.Duration
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

type Option func(*Client)

// WithRequestInterval sets the minimal spacing between requests. Zero disables spacing.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.UserAgent = ua
		}
	}
}

func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.APIURL = u
		}
	}
}

// New returns hh.ru API client. Token is optional: vacancy search works without it,
// resumes and negotiations do not.
func New(logger *zap.Logger, token string, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		token:      token,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		retryDelay: DefaultRetryDelay,
		APIURL:     apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasToken reports whether the client can call endpoints that require authorization.
func (c *Client) HasToken() bool {
	return c.token != ""
}
