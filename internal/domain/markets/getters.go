package markets

import (
	"fmt"
	"strings"
	"time"

	"moex-client/internal/domain/entity/market"
)

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// VolumeGetter reads the day turnover. args[0] is the currency (default rub);
// for usd the "_usd" column next to field is read.
func (b *Base) VolumeGetter(field string) market.Getter {
	return func(snapshot market.Snapshot, args market.Args) (any, error) {
		currency, err := market.ParseCurrency(args.At(0), b.currencies)
		if err != nil {
			return nil, err
		}
		name := field
		if currency == market.CurrencyUSD {
			name += "_usd"
		}
		return snapshot.Field(name)
	}
}

// ChangeGetter reads the price change. args[0] is the range (only "day"),
// args[1] the measurement: "%" reads percentField, anything else pointsField.
func (b *Base) ChangeGetter(pointsField, percentField string) market.Getter {
	return func(snapshot market.Snapshot, args market.Args) (any, error) {
		if _, err := market.ParseRange(args.At(0)); err != nil {
			return nil, err
		}
		name := pointsField
		if market.ParseMeasurement(args.At(1)) == market.MeasurementPercent {
			name = percentField
		}
		return snapshot.Field(name)
	}
}

// LastUpdateGetter combines the date part of dateField with the time of day
// in timeField and anchors the result to the market's timezone.
func (b *Base) LastUpdateGetter(dateField, timeField string) market.Getter {
	return func(snapshot market.Snapshot, _ market.Args) (any, error) {
		sysTime, err := snapshot.String(dateField)
		if err != nil {
			return nil, err
		}
		updateTime, err := snapshot.String(timeField)
		if err != nil {
			return nil, err
		}
		date, _, _ := strings.Cut(sysTime, " ")
		t, err := parseDateTime(date+" "+updateTime, b.location)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("%w: date-time %q: %w", market.ErrParse, value, lastErr)
}
