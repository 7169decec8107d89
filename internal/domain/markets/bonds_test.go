package markets

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"moex-client/internal/domain/entity/market"
)

func bondSnapshot() market.Snapshot {
	return market.Snapshot{
		"last":            "98.75",
		"open":            "98.1",
		"lcloseprice":     "98.33",
		"lcurrentprice":   "98.7",
		"low":             "97.9",
		"high":            "99.05",
		"yield":           "12.31",
		"duration":        "1287",
		"valtoday":        "1532000400",
		"valtoday_usd":    "16950213",
		"change":          "0.41",
		"lasttoprevprice": "0.42",
		"systime":         "2023-05-10 03:00:00",
		"updatetime":      "18:45:32",
	}
}

func TestBonds_Type(t *testing.T) {
	if got := NewBonds().Type(); got != market.BondsType {
		t.Errorf("Type() = %q, want %q", got, market.BondsType)
	}
}

func TestBonds_OverridesWin(t *testing.T) {
	m := NewBonds()

	for name, want := range bondsDefinition.Overrides.MarketData {
		if got := m.Resolve(name, market.CategoryMarketData); got != want {
			t.Errorf("Resolve(%q, marketdata) = %q, want %q", name, got, want)
		}
	}
	for name, want := range bondsDefinition.Overrides.Instrument {
		if got := m.Resolve(name, market.CategoryInstrument); got != want {
			t.Errorf("Resolve(%q, instrument) = %q, want %q", name, got, want)
		}
	}

	// The default table maps closingprice to closeprice; bonds read lcloseprice.
	if got := m.Resolve("closingprice", market.CategoryMarketData); got != "lcloseprice" {
		t.Errorf("Resolve(closingprice) = %q, want %q", got, "lcloseprice")
	}
}

func TestBonds_Volume(t *testing.T) {
	m := NewBonds()
	snapshot := bondSnapshot()

	tests := []struct {
		name string
		args market.Args
		want string
	}{
		{name: "default rub", args: nil, want: "1532000400"},
		{name: "empty arg", args: market.Args{""}, want: "1532000400"},
		{name: "zero arg", args: market.Args{"0"}, want: "1532000400"},
		{name: "explicit rub", args: market.Args{"rub"}, want: "1532000400"},
		{name: "usd", args: market.Args{"usd"}, want: "16950213"},
		{name: "upper usd", args: market.Args{"USD"}, want: "16950213"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Value("volume", snapshot, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("volume(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestBonds_Volume_UnsupportedCurrency(t *testing.T) {
	m := NewBonds()

	_, err := m.Value("volume", market.Snapshot{}, market.Args{"eur"})
	if !errors.Is(err, market.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	// Validation happens before the lookup, so an empty snapshot does not matter.
	if errors.Is(err, market.ErrMissingField) {
		t.Error("validation error should not be a missing field error")
	}
}

func TestBonds_Volume_CustomCurrencies(t *testing.T) {
	m := NewBonds(WithCurrencies(market.NewCurrencySet(market.CurrencyRUB, market.CurrencyUSD, "eur")))

	got, err := m.Value("volume", bondSnapshot(), market.Args{"eur"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only usd has its own column; every other supported currency reads valtoday.
	if got != "1532000400" {
		t.Errorf("volume(eur) = %v, want valtoday", got)
	}
}

func TestBonds_Volume_MissingUSDColumn(t *testing.T) {
	m := NewBonds()

	_, err := m.Value("volume", market.Snapshot{"valtoday": "1"}, market.Args{"usd"})
	if !errors.Is(err, market.ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}

func TestBonds_Change(t *testing.T) {
	m := NewBonds()
	snapshot := bondSnapshot()

	tests := []struct {
		name string
		args market.Args
		want string
	}{
		{name: "defaults", args: nil, want: "0.41"},
		{name: "day points", args: market.Args{"day", "points"}, want: "0.41"},
		{name: "day percent", args: market.Args{"day", "%"}, want: "0.42"},
		{name: "upper day percent", args: market.Args{"DAY", "%"}, want: "0.42"},
		{name: "empty range percent", args: market.Args{"", "%"}, want: "0.42"},
		{name: "zero range percent", args: market.Args{"0", "%"}, want: "0.42"},
		{name: "typo measurement falls back to points", args: market.Args{"day", "percnt"}, want: "0.41"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Value("change", snapshot, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("change(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestBonds_Change_UnsupportedRange(t *testing.T) {
	m := NewBonds()

	for _, r := range []string{"week", "month", "year"} {
		_, err := m.Value("change", bondSnapshot(), market.Args{r})
		if !errors.Is(err, market.ErrInvalidArgument) {
			t.Errorf("change(%s) err = %v, want ErrInvalidArgument", r, err)
			continue
		}
		if err.Error() != `Unsupported range. Available ranges: "day"` {
			t.Errorf("message = %q", err.Error())
		}
	}
}

func TestBonds_LastUpdate(t *testing.T) {
	loc := MoscowLocation()
	m := NewBonds(WithLocation(loc))

	got, err := m.Value("lastupdate", bondSnapshot(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("lastupdate type = %T, want time.Time", got)
	}

	want := time.Date(2023, 5, 10, 18, 45, 32, 0, loc)
	if !ts.Equal(want) {
		t.Errorf("lastupdate = %v, want %v", ts, want)
	}
	if ts.Location() != loc {
		t.Errorf("location = %v, want %v", ts.Location(), loc)
	}
	if got := ts.UTC().Hour(); got != 15 {
		t.Errorf("UTC hour = %d, want 15", got)
	}
}

func TestBonds_LastUpdate_CustomLocation(t *testing.T) {
	m := NewBonds(WithLocation(time.UTC))

	got, err := m.Value("lastupdate", bondSnapshot(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 5, 10, 18, 45, 32, 0, time.UTC)
	if !got.(time.Time).Equal(want) {
		t.Errorf("lastupdate = %v, want %v", got, want)
	}
}

func TestBonds_LastUpdate_Errors(t *testing.T) {
	m := NewBonds()

	tests := []struct {
		name     string
		snapshot market.Snapshot
		want     error
	}{
		{
			name:     "missing systime",
			snapshot: market.Snapshot{"updatetime": "18:45:32"},
			want:     market.ErrMissingField,
		},
		{
			name:     "missing updatetime",
			snapshot: market.Snapshot{"systime": "2023-05-10 03:00:00"},
			want:     market.ErrMissingField,
		},
		{
			name:     "garbage time",
			snapshot: market.Snapshot{"systime": "2023-05-10 03:00:00", "updatetime": "late"},
			want:     market.ErrParse,
		},
		{
			name:     "null updatetime",
			snapshot: market.Snapshot{"systime": "2023-05-10 03:00:00", "updatetime": nil},
			want:     market.ErrParse,
		},
		{
			name:     "garbage date",
			snapshot: market.Snapshot{"systime": "yesterday", "updatetime": "18:45:32"},
			want:     market.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Value("lastupdate", tt.snapshot, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("value = %v, want nil on error", got)
			}
		})
	}
}

func TestBonds_RawFieldFallback(t *testing.T) {
	m := NewBonds()
	snapshot := bondSnapshot()

	tests := map[string]string{
		"lastprice":    "98.75",
		"closingprice": "98.33",
		"currentprice": "98.7",
		"Yield":        "12.31",
		"duration":     "1287",
		"dailyhigh":    "99.05",
	}
	for name, want := range tests {
		got, err := m.Value(name, snapshot, nil)
		if err != nil {
			t.Errorf("Value(%q) error: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("Value(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBonds_Deterministic(t *testing.T) {
	m := NewBonds()
	snapshot := bondSnapshot()

	first, err := m.Value("lastupdate", snapshot, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := m.Value("lastupdate", snapshot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.(time.Time).Equal(first.(time.Time)) {
			t.Fatalf("call %d = %v, want %v", i, got, first)
		}
	}
	if len(snapshot) != len(bondSnapshot()) {
		t.Error("snapshot was mutated")
	}
}

func TestBonds_GettersMatchDefaults(t *testing.T) {
	bonds := NewBonds()
	defaults := New(Definition{Type: market.BondsType, Getters: DefaultGetters})

	if got, want := bonds.Metrics(), defaults.Metrics(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Metrics() = %v, want %v", got, want)
	}
	for _, name := range defaults.Metrics() {
		got, err := bonds.Value(name, bondSnapshot(), market.Args{"", "%"})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		want, err := defaults.Value(name, bondSnapshot(), market.Args{"", "%"})
		if err != nil {
			t.Fatalf("default %s: %v", name, err)
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("%s = %v, default getter gives %v", name, got, want)
		}
	}
}
