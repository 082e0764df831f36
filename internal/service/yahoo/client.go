package yahoo

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"StockSight/internal/domain/models"
	pkghttp "StockSight/pkg/http"
	"StockSight/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds Yahoo Finance client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches daily candles and company fundamentals from the
// Yahoo Finance JSON endpoints. It implements repository.MarketData.
type Client struct {
	baseURL string
	http    *pkghttp.Client
	logger  *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		logger:  log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCandles fetches 1d bars for the symbol over [from, to]. An
// empty result from the upstream yields an empty slice, not an error;
// null bars (holidays, halts) are skipped.
func (c *Client) DailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.Unix(), 10)},
			"events":   {"history"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s (%s)", symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return []models.Candle{}, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candles = append(candles, models.Candle{
			Bucket: time.Unix(ts, 0).UTC(),
			Symbol: symbol,
			Open:   deref(quote.Open, i),
			High:   deref(quote.High, i),
			Low:    deref(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: deref(quote.Volume, i),
		})
	}

	c.logger.Debug("fetched daily candles",
		logger.String("symbol", symbol),
		logger.Int("count", len(candles)))
	return candles, nil
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *struct {
				TotalRevenue      rawValue `json:"totalRevenue"`
				OperatingCashflow rawValue `json:"operatingCashflow"`
				CurrentPrice      rawValue `json:"currentPrice"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				NetIncomeToCommon rawValue `json:"netIncomeToCommon"`
				SharesOutstanding rawValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			CashflowStatementHistory *struct {
				CashflowStatements []struct {
					CapitalExpenditures rawValue `json:"capitalExpenditures"`
				} `json:"cashflowStatements"`
			} `json:"cashflowStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fundamentals fetches the figures a valuation needs. Fields the
// upstream does not report come back as NaN; the valuation layer owns
// the fallbacks.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	var resp quoteSummaryResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"modules": {"financialData,defaultKeyStatistics,cashflowStatementHistory"},
		},
	}, &resp)
	if err != nil {
		return models.Fundamentals{}, fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return models.Fundamentals{}, fmt.Errorf("fundamentals for %s: %s (%s)",
			symbol, resp.QuoteSummary.Error.Description, resp.QuoteSummary.Error.Code)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return models.Fundamentals{}, fmt.Errorf("fundamentals for %s: empty result", symbol)
	}

	f := models.Fundamentals{
		Symbol:            symbol,
		Revenue:           math.NaN(),
		NetIncome:         math.NaN(),
		OperatingCashFlow: math.NaN(),
		CapEx:             math.NaN(),
		SharesOutstanding: math.NaN(),
		CurrentPrice:      math.NaN(),
	}
	r := resp.QuoteSummary.Result[0]
	if fd := r.FinancialData; fd != nil {
		f.Revenue = rawOrNaN(fd.TotalRevenue)
		f.OperatingCashFlow = rawOrNaN(fd.OperatingCashflow)
		f.CurrentPrice = rawOrNaN(fd.CurrentPrice)
	}
	if ks := r.DefaultKeyStatistics; ks != nil {
		f.NetIncome = rawOrNaN(ks.NetIncomeToCommon)
		f.SharesOutstanding = rawOrNaN(ks.SharesOutstanding)
	}
	if ch := r.CashflowStatementHistory; ch != nil && len(ch.CashflowStatements) > 0 {
		// Yahoo reports capex as a negative outflow.
		if capex := rawOrNaN(ch.CashflowStatements[0].CapitalExpenditures); !math.IsNaN(capex) {
			f.CapEx = math.Abs(capex)
		}
	}
	return f, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func rawOrNaN(v rawValue) float64 {
	if v.Raw == nil {
		return math.NaN()
	}
	return *v.Raw
}
