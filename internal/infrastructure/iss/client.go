package iss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moex-client/internal/domain/entity/market"
	"moex-client/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://iss.moex.com/iss"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

var (
	ErrUnsupportedMarket = errors.New("market has no iss endpoint")
	ErrResponseTooLarge  = errors.New("iss response too large")
)

type endpoint struct {
	engine string
	market string
}

var endpoints = map[market.MarketType]endpoint{
	market.BondsType:    {engine: "stock", market: "bonds"},
	market.SharesType:   {engine: "stock", market: "shares"},
	market.CurrencyType: {engine: "currency", market: "selt"},
	market.IndexType:    {engine: "stock", market: "index"},
}

// Client reads security rows from the Moscow Exchange ISS REST API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Entry
}

var _ interfaces.SecuritySource = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithField("component", "iss_client"),
	}
}

// Security fetches the description and market data rows of secid. When the
// security trades on several boards, the first description row wins and the
// market data row of the same board is used.
func (c *Client) Security(ctx context.Context, marketType market.MarketType, secid string) (*market.Security, error) {
	ep, ok := endpoints[marketType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, marketType)
	}
	secid = strings.TrimSpace(secid)
	if secid == "" {
		return nil, fmt.Errorf("%w: empty secid", market.ErrSecurityNotFound)
	}

	body, err := c.get(ctx, c.securityURL(ep, secid))
	if err != nil {
		return nil, err
	}
	resp, err := decodeSecurity(body)
	if err != nil {
		return nil, err
	}

	descriptions, err := resp.Securities.rows()
	if err != nil {
		return nil, fmt.Errorf("securities block: %w", err)
	}
	marketData, err := resp.MarketData.rows()
	if err != nil {
		return nil, fmt.Errorf("marketdata block: %w", err)
	}
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", market.ErrSecurityNotFound, marketType, secid)
	}

	description := descriptions[0]
	board, _ := description.String("boardid")
	security := &market.Security{
		SecID:       secid,
		Board:       board,
		Description: description,
		MarketData:  pickBoard(marketData, board),
	}

	c.logger.WithFields(logrus.Fields{
		"market": marketType,
		"secid":  secid,
		"board":  board,
		"boards": len(descriptions),
	}).Debug("security loaded")
	return security, nil
}

func (c *Client) securityURL(ep endpoint, secid string) string {
	q := url.Values{}
	q.Set("iss.meta", "off")
	q.Set("iss.only", "securities,marketdata")
	return fmt.Sprintf("%s/engines/%s/markets/%s/securities/%s.json?%s",
		c.baseURL, ep.engine, ep.market, url.PathEscape(secid), q.Encode())
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request iss: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request iss: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read iss: %w", err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodyBytes)
	}
	return data, nil
}

// pickBoard returns the row for board, the first row when no row matches,
// or an empty snapshot when there are no rows at all.
func pickBoard(rows []market.Snapshot, board string) market.Snapshot {
	if len(rows) == 0 {
		return market.Snapshot{}
	}
	if board != "" {
		for _, row := range rows {
			if b, err := row.String("boardid"); err == nil && b == board {
				return row
			}
		}
	}
	return rows[0]
}
