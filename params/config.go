package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"quotebot/pkg/exchange"
)

// Quoting holds the strategy parameters.
type Quoting struct {
	BotName      string
	Spread       float64 // total width between quoted bid and ask
	SkewFactor   float64 // inventory lean strength
	DefaultPrice float64 // reference price for an empty book
	BaseSize     int64
	Disabled     []string // tickers excluded from quoting
}

// Run holds process-level settings.
type Run struct {
	HarnessURL string // ws:// endpoint of the exchange simulator
	StatusAddr string // status API listen address; empty disables it
	LogFile    string // optional log file (console only when empty)
}

type Config struct {
	Quoting     Quoting
	Run         Run
	Instruments []exchange.Instrument
}

// Default returns the stock configuration: a single unbounded test
// instrument and the reference quoting parameters.
func Default() Config {
	return Config{
		Quoting: Quoting{
			BotName:      "MarketMakerBot",
			Spread:       1.0,
			SkewFactor:   0.5,
			DefaultPrice: 1000.0,
			BaseSize:     5,
		},
		Run: Run{
			HarnessURL: "ws://localhost:8000/ws",
		},
		Instruments: []exchange.Instrument{
			{Ticker: "UEC", PosLimit: 100, TickSize: 0.5},
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("BOT_NAME"); v != "" {
		cfg.Quoting.BotName = v
	}
	if v := os.Getenv("QUOTE_SPREAD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("QUOTE_SPREAD: %w", err)
		}
		cfg.Quoting.Spread = f
	}
	if v := os.Getenv("QUOTE_SKEW_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("QUOTE_SKEW_FACTOR: %w", err)
		}
		cfg.Quoting.SkewFactor = f
	}
	if v := os.Getenv("QUOTE_DEFAULT_PRICE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("QUOTE_DEFAULT_PRICE: %w", err)
		}
		cfg.Quoting.DefaultPrice = f
	}
	if v := os.Getenv("QUOTE_BASE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("QUOTE_BASE_SIZE: %w", err)
		}
		cfg.Quoting.BaseSize = n
	}
	if v := os.Getenv("QUOTE_DISABLED"); v != "" {
		cfg.Quoting.Disabled = splitCSV(v)
	}

	if v := os.Getenv("HARNESS_URL"); v != "" {
		cfg.Run.HarnessURL = v
	}
	if v := os.Getenv("STATUS_ADDR"); v != "" {
		cfg.Run.StatusAddr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Run.LogFile = v
	}

	if v := os.Getenv("INSTRUMENTS"); v != "" {
		instruments, err := ParseInstruments(v)
		if err != nil {
			return cfg, fmt.Errorf("INSTRUMENTS: %w", err)
		}
		cfg.Instruments = instruments
	}

	return cfg, nil
}

// ParseInstruments parses a comma-separated instrument list of the form
// "TICKER:limit:tick", e.g. "UEC:100:0.5,SOBER:50:1". A limit of "inf",
// "none" or an empty field means unbounded; a missing tick defaults to 1.
func ParseInstruments(s string) ([]exchange.Instrument, error) {
	var out []exchange.Instrument
	for _, entry := range splitCSV(s) {
		parts := strings.Split(entry, ":")
		inst := exchange.Instrument{Ticker: parts[0], TickSize: 1.0}
		if inst.Ticker == "" {
			return nil, fmt.Errorf("instrument %q: empty ticker", entry)
		}
		if len(parts) > 1 {
			limit, err := parseLimit(parts[1])
			if err != nil {
				return nil, fmt.Errorf("instrument %q: %w", entry, err)
			}
			inst.PosLimit = limit
		}
		if len(parts) > 2 && parts[2] != "" {
			tick, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("instrument %q: %w", entry, err)
			}
			inst.TickSize = tick
		}
		out = append(out, inst)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no instruments in %q", s)
	}
	return out, nil
}

func parseLimit(s string) (int64, error) {
	switch strings.ToLower(s) {
	case "", "inf", "none":
		return 0, nil // unbounded
	}
	return strconv.ParseInt(s, 10, 64)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
