package runner

import (
	"context"
	"sync"
	"time"

	"signals_bot/internal/dispatch"
	"signals_bot/internal/exchange"
	"signals_bot/internal/models"
	bootstrap "signals_bot/internal/modules/bootstrap/service"
	"signals_bot/internal/modules/config"
	health "signals_bot/internal/modules/health/service"
	strategy "signals_bot/internal/modules/strategy/service"
	validator "signals_bot/internal/modules/validator/service"
	"signals_bot/internal/store"
	"signals_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

// Scanner гоняет стратегии по вотчлисту и публикует прошедшие валидацию
// сигналы: сначала запись в стор, потом доставка на вебхук.
type Scanner struct {
	cfg   *config.Config
	wl    *bootstrap.Watchlist
	src   exchange.CandleSource
	evals []strategy.Evaluator
	val   *validator.Validator
	st    store.Store
	disp  dispatch.Dispatcher
	state *health.State
}

func NewScanner(
	cfg *config.Config,
	wl *bootstrap.Watchlist,
	src exchange.CandleSource,
	evals []strategy.Evaluator,
	val *validator.Validator,
	st store.Store,
	disp dispatch.Dispatcher,
	state *health.State,
) *Scanner {
	return &Scanner{
		cfg:   cfg,
		wl:    wl,
		src:   src,
		evals: evals,
		val:   val,
		st:    st,
		disp:  disp,
		state: state,
	}
}

// Run — основной цикл сканирования. Первый проход сразу, дальше по тикеру.
func (s *Scanner) Run(ctx context.Context) {
	logger.Info("[RUNNER] scan loop started: %d pairs, %d timeframes, every %s",
		len(s.wl.Pairs), len(s.wl.Timeframes), s.cfg.Scan.Interval)

	ticker := time.NewTicker(s.cfg.Scan.Interval)
	defer ticker.Stop()

	for {
		s.cycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scanner) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[RUNNER] scan cycle panic: %v", r)
			time.Sleep(s.cfg.Scan.ErrorBackoff)
		}
	}()

	s.Scan(ctx)
	s.state.SetReady(true)
	s.state.TouchScan(time.Now())
}

// Scan — один проход по всем парам, пары обрабатываются параллельно.
func (s *Scanner) Scan(ctx context.Context) {
	span := opentracing.StartSpan("scan_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	var wg sync.WaitGroup
	for _, pair := range s.wl.Pairs {
		pair := pair
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("[RUNNER] panic on %s: %v", pair, r)
				}
			}()
			s.scanPair(ctx, pair)
		}()
	}
	wg.Wait()
}

func (s *Scanner) scanPair(ctx context.Context, pair string) {
	for _, tf := range s.wl.Timeframes {
		w, err := s.src.Candles(ctx, pair, tf, s.cfg.Scan.CandleLimit)
		if err != nil {
			logger.Error("[RUNNER] fetch %s %s: %v", pair, tf, err)
			continue
		}
		if len(w) < s.cfg.Scan.MinCandles {
			logger.Warn("[RUNNER] %s %s: only %d candles, skip", pair, tf, len(w))
			continue
		}

		for _, candidate := range strategy.EvaluateAll(s.evals, w, pair, tf) {
			s.publish(ctx, candidate, w)
		}
	}
}

func (s *Scanner) publish(ctx context.Context, candidate *models.Signal, w models.Window) {
	sig, ok := s.val.Admit(candidate, w)
	if !ok {
		return
	}

	if s.st.Exists(ctx, sig.Fingerprint()) {
		return
	}

	id, err := s.st.Add(ctx, sig)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// параллельный таймфрейм успел первым
			return
		}
		logger.Error("[RUNNER] store %s: %v", sig.Fingerprint(), err)
		return
	}

	logger.Info("[RUNNER] new signal %s %s %s %s %s conf=%.2f",
		sig.SerialLabel(), sig.Pair, sig.Direction, sig.Strategy, sig.Timeframe, sig.Confidence)

	if err := s.disp.Dispatch(ctx, *sig); err != nil {
		// сигнал уже в сторе, повторной публикации не будет; только лог
		logger.Error("[RUNNER] dispatch %s (%s): %v", sig.SerialLabel(), id, err)
	}
}
