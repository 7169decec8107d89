package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	appquotes "moex-client/internal/application/service/quotes"
)

type watchlistFile struct {
	Securities []appquotes.WatchItem `yaml:"securities"`
}

func readWatchlist(path string) ([]appquotes.WatchItem, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}
	return parseWatchlist(data)
}

func parseWatchlist(data []byte) ([]appquotes.WatchItem, error) {
	var payload watchlistFile
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse watchlist file: %w", err)
	}

	items := make([]appquotes.WatchItem, 0, len(payload.Securities))
	for i, item := range payload.Securities {
		item.Market = strings.TrimSpace(item.Market)
		item.SecID = strings.TrimSpace(item.SecID)
		if item.Market == "" || item.SecID == "" {
			return nil, fmt.Errorf("watchlist entry %d: market and secid are required", i)
		}
		if len(item.Metrics) == 0 {
			return nil, fmt.Errorf("watchlist entry %d (%s): no metrics", i, item.SecID)
		}
		for j, m := range item.Metrics {
			if strings.TrimSpace(m.Name) == "" {
				return nil, fmt.Errorf("watchlist entry %d (%s): metric %d has no name", i, item.SecID, j)
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, errors.New("watchlist is empty")
	}
	return items, nil
}
