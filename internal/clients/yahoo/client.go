// Package yahoo provides a client for the Yahoo Finance public endpoints:
// the JSON chart and fundamentals-timeseries APIs, and the HTML quote pages
// the headline collector scrapes.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
)

const (
	DefaultBaseURL      = "https://query1.finance.yahoo.com"
	DefaultQuoteBaseURL = "https://finance.yahoo.com"
	DefaultUserAgent    = "Mozilla/5.0"
	DefaultTimeout      = 20 * time.Second
	DefaultRateLimit    = 5 // requests per second

	// DefaultRange is the trailing window for daily closes.
	DefaultRange = "3mo"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface.
type Client struct {
	baseURL      string
	quoteBaseURL string
	userAgent    string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
}

var _ interfaces.MarketDataClient = (*Client)(nil)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the JSON API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithQuoteBaseURL sets the HTML quote page base URL.
func WithQuoteBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.quoteBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		quoteBaseURL: DefaultQuoteBaseURL,
		userAgent:    DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a provider error.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do performs a rate-limited GET request and returns the response body.
func (c *Client) do(ctx context.Context, reqURL string, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("endpoint", endpoint).Msg("Yahoo request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
			Endpoint:   endpoint,
		}
	}

	return body, nil
}

// get performs a rate-limited GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := c.do(ctx, reqURL, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetHeadlines retrieves up to limit headlines from the ticker's quote page.
// The extraction contract is the text of the page's first h3 elements; the
// page layout carries no stability guarantee.
func (c *Client) GetHeadlines(ctx context.Context, ticker string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	reqURL := fmt.Sprintf("%s/quote/%s?p=%s", c.quoteBaseURL, url.PathEscape(ticker), url.QueryEscape(ticker))
	body, err := c.do(ctx, reqURL, "/quote/"+ticker)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quote page: %w", err)
	}

	headlines := make([]string, 0, limit)
	doc.Find("h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			headlines = append(headlines, text)
		}
		return len(headlines) < limit
	})

	c.logger.Debug().Str("ticker", ticker).Int("headlines", len(headlines)).Msg("Quote page scraped")

	return headlines, nil
}

// chartResponse is the chart API response structure.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// GetDailyCloses retrieves daily closing prices for the trailing range,
// oldest first. Null bars (holidays, halts) are skipped.
func (c *Client) GetDailyCloses(ctx context.Context, ticker string, rng string) ([]models.PriceBar, error) {
	if rng == "" {
		rng = DefaultRange
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rng)

	var chart chartResponse
	path := "/v8/finance/chart/" + url.PathEscape(ticker)
	if err := c.get(ctx, path, params, &chart); err != nil {
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart API returned no series for %s", ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		close := toFloat(quote.Close[i])
		if close == 0 {
			continue // null bar
		}
		bars = append(bars, models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: close,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	c.logger.Debug().Str("ticker", ticker).Str("range", rng).Int("bars", len(bars)).Msg("Daily closes fetched")

	return bars, nil
}

// fundamentalsResponse is the fundamentals-timeseries API response structure.
// Each result carries exactly one series, named by meta.type.
type fundamentalsResponse struct {
	Timeseries struct {
		Result []struct {
			Meta struct {
				Symbol []string `json:"symbol"`
				Type   []string `json:"type"`
			} `json:"meta"`
			AnnualTotalRevenue []*timeseriesValue `json:"annualTotalRevenue"`
			AnnualNetIncome    []*timeseriesValue `json:"annualNetIncome"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type timeseriesValue struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw flexFloat64 `json:"raw"`
		Fmt string      `json:"fmt"`
	} `json:"reportedValue"`
}

// GetFinancials retrieves annual Total Revenue and Net Income figures,
// most recent first.
func (c *Client) GetFinancials(ctx context.Context, ticker string) (*models.Financials, error) {
	now := time.Now()

	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("type", "annualTotalRevenue,annualNetIncome")
	params.Set("period1", strconv.FormatInt(now.AddDate(-6, 0, 0).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))

	var ts fundamentalsResponse
	path := "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(ticker)
	if err := c.get(ctx, path, params, &ts); err != nil {
		return nil, err
	}

	if ts.Timeseries.Error != nil {
		return nil, fmt.Errorf("fundamentals API error for %s: %s", ticker, ts.Timeseries.Error.Description)
	}

	fin := &models.Financials{Ticker: ticker}
	for _, result := range ts.Timeseries.Result {
		if len(result.Meta.Type) == 0 {
			continue
		}
		switch result.Meta.Type[0] {
		case "annualTotalRevenue":
			fin.Revenue = collectValues(result.AnnualTotalRevenue)
		case "annualNetIncome":
			fin.NetIncome = collectValues(result.AnnualNetIncome)
		}
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Int("revenue_periods", len(fin.Revenue)).
		Int("net_income_periods", len(fin.NetIncome)).
		Msg("Financials fetched")

	return fin, nil
}

// collectValues flattens a timeseries into FinancialValues, most recent first.
// Null entries (unreported periods) are skipped.
func collectValues(series []*timeseriesValue) []models.FinancialValue {
	values := make([]models.FinancialValue, 0, len(series))
	for _, v := range series {
		if v == nil || v.AsOfDate == "" {
			continue
		}
		values = append(values, models.FinancialValue{
			Date:  v.AsOfDate,
			Value: float64(v.ReportedValue.Raw),
		})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Date > values[j].Date })
	return values
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
