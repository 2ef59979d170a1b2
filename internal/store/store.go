// Package store — durable-кэш сигналов: дедупликация по fingerprint,
// монотонные серийные номера, ленивый 24-часовой TTL.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"signals_bot/internal/models"
)

var (
	// ErrDuplicate — по fingerprint уже есть активный сигнал.
	ErrDuplicate = errors.New("store: duplicate active signal")
	// ErrWrite — носитель не записался; сигнал считать не сохранённым.
	ErrWrite = errors.New("store: write failed")
)

// TTL активного сигнала; просрочка вычищается при каждом чтении.
const signalTTL = 24 * time.Hour

// Просрочку вычищаем только по известным таймфреймам — записи с внешними
// таймфреймами не трогаем.
var recognizedTimeframes = map[string]struct{}{
	"1m": {}, "3m": {}, "5m": {}, "15m": {}, "30m": {},
	"1h": {}, "4h": {}, "1d": {},
}

func expired(sig *models.Signal, now time.Time) bool {
	if _, ok := recognizedTimeframes[sig.Timeframe]; !ok {
		return false
	}
	return now.Sub(sig.CreatedAt) > signalTTL
}

type Store interface {
	// Exists — есть ли активный (и не просроченный) сигнал с таким fingerprint.
	Exists(ctx context.Context, fp models.Fingerprint) bool
	// Add присваивает id/serial/timestamp, ставит active=true и сохраняет.
	// Возвращает ErrDuplicate без записи, если fingerprint уже активен.
	Add(ctx context.Context, sig *models.Signal) (string, error)
	// Remove удаляет по id; отсутствие записи — не ошибка.
	Remove(ctx context.Context, id string) error
	// ActiveSignals сначала вычищает просроченные записи (побочный эффект,
	// на который рассчитывают периодические вызыватели), потом отдаёт активные.
	ActiveSignals(ctx context.Context) []models.Signal
	Clear(ctx context.Context) error
}
