package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moex-client/internal/domain/entity/market"
	"moex-client/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	ErrNilSource    = errors.New("security source is nil")
	ErrEmptySecID   = errors.New("secid is required")
	ErrEmptyMetric  = errors.New("metric name is required")
	ErrEmptyMarket  = errors.New("market is required")
	ErrNoWatchItems = errors.New("watchlist is empty")
)

// MarketRegistry finds market variants by code.
type MarketRegistry interface {
	Lookup(id string) (interfaces.Market, error)
	Types() []market.MarketType
}

// Value is a resolved metric or property of one security.
type Value struct {
	Market market.MarketType `json:"market"`
	SecID  string            `json:"secid"`
	Name   string            `json:"name"`
	Args   market.Args       `json:"args,omitempty"`
	Value  any               `json:"value"`
}

// MarketInfo describes a registered market variant.
type MarketInfo struct {
	Market  market.MarketType `json:"market"`
	Metrics []string          `json:"metrics"`
}

type Service struct {
	markets MarketRegistry
	source  interfaces.SecuritySource
	logger  *logrus.Entry
	now     func() time.Time
}

func NewService(markets MarketRegistry, source interfaces.SecuritySource, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		markets: markets,
		source:  source,
		logger:  logger.WithField("component", "quotes"),
		now:     time.Now,
	}
}

func (s *Service) Markets() []MarketInfo {
	types := s.markets.Types()
	out := make([]MarketInfo, 0, len(types))
	for _, mt := range types {
		m, err := s.markets.Lookup(mt.String())
		if err != nil {
			continue
		}
		out = append(out, MarketInfo{Market: mt, Metrics: m.Metrics()})
	}
	return out
}

// Resolve returns the raw field a generic property name maps to on marketID.
func (s *Service) Resolve(marketID, name string, category market.Category) (string, error) {
	m, err := s.lookup(marketID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyMetric
	}
	return m.Resolve(name, category), nil
}

// Metric loads the security and evaluates a metric against its market data.
func (s *Service) Metric(ctx context.Context, marketID, secid, metric string, args market.Args) (*Value, error) {
	if strings.TrimSpace(metric) == "" {
		return nil, ErrEmptyMetric
	}
	m, sec, err := s.load(ctx, marketID, secid)
	if err != nil {
		return nil, err
	}
	value, err := m.Value(metric, sec.MarketData, args)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", m.Type(), sec.SecID, metric, err)
	}
	return &Value{Market: m.Type(), SecID: sec.SecID, Name: strings.ToLower(metric), Args: args, Value: value}, nil
}

// Property loads the security and returns a static instrument property.
func (s *Service) Property(ctx context.Context, marketID, secid, property string) (*Value, error) {
	if strings.TrimSpace(property) == "" {
		return nil, ErrEmptyMetric
	}
	m, sec, err := s.load(ctx, marketID, secid)
	if err != nil {
		return nil, err
	}
	value, err := m.Property(property, sec.Description)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", m.Type(), sec.SecID, property, err)
	}
	return &Value{Market: m.Type(), SecID: sec.SecID, Name: strings.ToLower(property), Value: value}, nil
}

func (s *Service) lookup(marketID string) (interfaces.Market, error) {
	if strings.TrimSpace(marketID) == "" {
		return nil, ErrEmptyMarket
	}
	return s.markets.Lookup(marketID)
}

func (s *Service) load(ctx context.Context, marketID, secid string) (interfaces.Market, *market.Security, error) {
	if s.source == nil {
		return nil, nil, ErrNilSource
	}
	m, err := s.lookup(marketID)
	if err != nil {
		return nil, nil, err
	}
	secid = strings.TrimSpace(secid)
	if secid == "" {
		return nil, nil, ErrEmptySecID
	}
	sec, err := s.source.Security(ctx, m.Type(), secid)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s/%s: %w", m.Type(), secid, err)
	}
	return m, sec, nil
}
