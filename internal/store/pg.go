package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"signals_bot/internal/models"
	"signals_bot/pkg/db"
	"signals_bot/pkg/logger"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS signals (
	id         TEXT PRIMARY KEY,
	serial     BIGINT NOT NULL,
	pair       TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	direction  TEXT NOT NULL,
	timeframe  TEXT NOT NULL,
	active     BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`

// PGStore — тот же плоский контракт, что и FileStore, но поверх одной
// таблицы. Мьютекс сериализует check-then-act между горутинами процесса,
// транзакция — запись.
type PGStore struct {
	mu         sync.Mutex
	tm         *db.PgTxManager
	nextSerial int64

	now func() time.Time
}

func NewPGStore(ctx context.Context, tm *db.PgTxManager) (*PGStore, error) {
	s := &PGStore{tm: tm, nextSerial: 1, now: time.Now}
	err := tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, pgSchema); err != nil {
			return err
		}
		// продолжаем серийники с максимума существующих
		row := tx.QueryRow(ctx, `SELECT COALESCE(MAX(serial), 0) FROM signals`)
		var maxSerial int64
		if err := row.Scan(&maxSerial); err != nil {
			return err
		}
		s.nextSerial = maxSerial + 1
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: init pg: %w", err)
	}
	return s, nil
}

func (s *PGStore) timeframeList() []string {
	out := make([]string, 0, len(recognizedTimeframes))
	for tf := range recognizedTimeframes {
		out = append(out, tf)
	}
	return out
}

// sweepQuery удаляет просроченные записи известных таймфреймов.
func (s *PGStore) sweep(ctx context.Context) {
	cutoff := s.now().Add(-signalTTL)
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM signals WHERE created_at < $1 AND timeframe = ANY($2)`,
			cutoff, s.timeframeList())
		return err
	})
	if err != nil {
		logger.Error("[STORE] pg: чистка TTL не удалась: %v", err)
	}
}

func (s *PGStore) Exists(ctx context.Context, fp models.Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)
	return s.existsLocked(ctx, fp)
}

func (s *PGStore) existsLocked(ctx context.Context, fp models.Fingerprint) bool {
	row := s.tm.Conn().QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM signals
			WHERE pair=$1 AND strategy=$2 AND direction=$3 AND timeframe=$4 AND active
		)`,
		fp.Pair, string(fp.Strategy), string(fp.Direction), fp.Timeframe)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		logger.Error("[STORE] pg: exists: %v", err)
		return false
	}
	return exists
}

func (s *PGStore) Add(ctx context.Context, sig *models.Signal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	if s.existsLocked(ctx, sig.Fingerprint()) {
		return "", ErrDuplicate
	}

	sig.ID = uuid.NewString()
	sig.Serial = s.nextSerial
	s.nextSerial++
	sig.CreatedAt = s.now()
	sig.Active = true

	payload, err := sonic.Marshal(sig)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", ErrWrite, err)
	}
	err = s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO signals (id, serial, pair, strategy, direction, timeframe, active, created_at, payload)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			sig.ID, sig.Serial, sig.Pair, string(sig.Strategy), string(sig.Direction),
			sig.Timeframe, sig.Active, sig.CreatedAt, payload)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return sig.ID, nil
}

func (s *PGStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM signals WHERE id=$1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (s *PGStore) ActiveSignals(ctx context.Context) []models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(ctx)

	rows, err := s.tm.Conn().Query(ctx, `SELECT payload FROM signals WHERE active ORDER BY serial`)
	if err != nil {
		logger.Error("[STORE] pg: active signals: %v", err)
		return nil
	}
	defer rows.Close()

	var out []models.Signal
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			logger.Error("[STORE] pg: scan: %v", err)
			continue
		}
		var sig models.Signal
		if err := sonic.Unmarshal(payload, &sig); err != nil {
			logger.Error("[STORE] pg: payload: %v", err)
			continue
		}
		out = append(out, sig)
	}
	return out
}

func (s *PGStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.tm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM signals`)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
