package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moex-client/internal/domain/entity/market"

	"github.com/sirupsen/logrus"
)

// MetricSpec names one metric and its call-time arguments.
type MetricSpec struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// WatchItem is a security the producer polls, with the metrics it reports.
type WatchItem struct {
	Market  string       `yaml:"market"`
	SecID   string       `yaml:"secid"`
	Metrics []MetricSpec `yaml:"metrics"`
}

// Collect evaluates every metric of every watch item. Each security is
// loaded once per call. Failures are logged and returned joined; readings that
// succeeded are still returned.
func (s *Service) Collect(ctx context.Context, items []WatchItem) ([]market.Reading, error) {
	if len(items) == 0 {
		return nil, ErrNoWatchItems
	}

	var (
		readings []market.Reading
		errs     []error
	)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return readings, err
		}
		log := s.logger.WithFields(logrus.Fields{"market": item.Market, "secid": item.SecID})

		m, sec, err := s.load(ctx, item.Market, item.SecID)
		if err != nil {
			log.WithError(err).Warn("skip security")
			errs = append(errs, err)
			continue
		}

		at := s.now()
		for _, spec := range item.Metrics {
			args := market.Args(spec.Args)
			value, err := m.Value(spec.Name, sec.MarketData, args)
			if err != nil {
				log.WithError(err).WithField("metric", spec.Name).Warn("skip metric")
				errs = append(errs, fmt.Errorf("%s %s %s: %w", m.Type(), sec.SecID, spec.Name, err))
				continue
			}
			readings = append(readings, market.NewReading(m.Type(), sec.SecID, strings.ToLower(spec.Name), args, value, at))
		}
	}

	s.logger.WithFields(logrus.Fields{
		"items":    len(items),
		"readings": len(readings),
		"errors":   len(errs),
	}).Debug("collected readings")
	return readings, errors.Join(errs...)
}
