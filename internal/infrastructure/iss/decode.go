package iss

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"moex-client/internal/domain/entity/market"

	"github.com/shopspring/decimal"
)

// block is one ISS table: column names plus positional rows.
type block struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

type securityResponse struct {
	Securities block `json:"securities"`
	MarketData block `json:"marketdata"`
}

// rows converts the table into snapshots keyed by lowercase column name.
func (b block) rows() ([]market.Snapshot, error) {
	columns := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		columns[i] = strings.ToLower(c)
	}

	out := make([]market.Snapshot, 0, len(b.Data))
	for n, row := range b.Data {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values for %d columns", n, len(row), len(columns))
		}
		snapshot := make(market.Snapshot, len(columns))
		for i, raw := range row {
			value, err := convertValue(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n, columns[i], err)
			}
			snapshot[columns[i]] = value
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func convertValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("%w: number %q: %w", market.ErrParse, v, err)
		}
		return d, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	default:
		return nil, fmt.Errorf("%w: unexpected value type %T", market.ErrParse, raw)
	}
}

func decodeSecurity(data []byte) (*securityResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var resp securityResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode iss response: %w", err)
	}
	return &resp, nil
}
