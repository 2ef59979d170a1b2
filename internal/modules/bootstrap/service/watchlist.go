package service

import (
	"os"

	"signals_bot/internal/modules/config"
	"signals_bot/pkg/logger"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var defaultTimeframes = []string{"3m", "5m", "15m"}

// Watchlist — пары и таймфреймы, которые сканирует раннер.
type Watchlist struct {
	Pairs      []string `yaml:"pairs"`
	Timeframes []string `yaml:"timeframes"`
}

func NewWatchlist(cfg *config.Config) (*Watchlist, error) {
	raw, err := os.ReadFile(cfg.WatchlistFile)
	if err != nil {
		return nil, errors.Wrap(err, "read watchlist file")
	}

	var wl Watchlist
	if err := yaml.Unmarshal(raw, &wl); err != nil {
		return nil, errors.Wrap(err, "parse watchlist file")
	}

	if len(wl.Pairs) == 0 {
		return nil, errors.New("watchlist has no pairs")
	}
	if len(wl.Timeframes) == 0 {
		wl.Timeframes = defaultTimeframes
	}

	logger.Info("[BOOT] watchlist loaded: %d pairs, %d timeframes", len(wl.Pairs), len(wl.Timeframes))
	return &wl, nil
}
