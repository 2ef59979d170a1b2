package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"signals_bot/internal/models"
	"signals_bot/pkg/logger"
)

// FileStore — плоский JSON-файл со всеми записями, один мьютекс на все
// операции: check-then-act (Exists+Add) целиком под замком.
type FileStore struct {
	mu         sync.Mutex
	path       string
	cache      []models.Signal
	nextSerial int64

	// подменяется в тестах
	now func() time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	f := &FileStore{
		path:       path,
		nextSerial: 1,
		now:        time.Now,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", f.path, err)
	}
	if len(data) > 0 {
		if err := sonic.Unmarshal(data, &f.cache); err != nil {
			// повреждённый файл не фатален: начинаем с пустого кэша
			logger.Error("[STORE] повреждённый кэш %s, начинаем заново: %v", f.path, err)
			f.cache = nil
		}
	}
	// серийники продолжаются с максимума загруженных
	for i := range f.cache {
		if f.cache[i].Serial >= f.nextSerial {
			f.nextSerial = f.cache[i].Serial + 1
		}
	}
	return nil
}

// flush пишет во временный файл и переименовывает — частичной записи
// на диске не бывает.
func (f *FileStore) flush() error {
	data, err := sonic.Marshal(f.cache)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrWrite, err)
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrWrite, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrWrite, err)
	}
	return nil
}

// sweep удаляет просроченные записи; вызывать под мьютексом.
func (f *FileStore) sweep() {
	now := f.now()
	kept := f.cache[:0]
	removed := 0
	for i := range f.cache {
		if expired(&f.cache[i], now) {
			removed++
			continue
		}
		kept = append(kept, f.cache[i])
	}
	if removed == 0 {
		return
	}
	f.cache = kept
	if err := f.flush(); err != nil {
		logger.Error("[STORE] не удалось сохранить после чистки TTL: %v", err)
	}
}

func (f *FileStore) Exists(_ context.Context, fp models.Fingerprint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweep()
	return f.existsLocked(fp)
}

func (f *FileStore) existsLocked(fp models.Fingerprint) bool {
	for i := range f.cache {
		if f.cache[i].Active && f.cache[i].Fingerprint() == fp {
			return true
		}
	}
	return false
}

func (f *FileStore) Add(_ context.Context, sig *models.Signal) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweep()

	if f.existsLocked(sig.Fingerprint()) {
		return "", ErrDuplicate
	}

	sig.ID = uuid.NewString()
	sig.Serial = f.nextSerial
	f.nextSerial++ // серийник не переиспользуется, даже если запись не удалась
	sig.CreatedAt = f.now()
	sig.Active = true

	f.cache = append(f.cache, *sig)
	if err := f.flush(); err != nil {
		f.cache = f.cache[:len(f.cache)-1]
		return "", err
	}
	return sig.ID, nil
}

func (f *FileStore) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.cache[:0]
	removed := false
	for i := range f.cache {
		if f.cache[i].ID == id {
			removed = true
			continue
		}
		kept = append(kept, f.cache[i])
	}
	if !removed {
		return nil
	}
	f.cache = kept
	return f.flush()
}

func (f *FileStore) ActiveSignals(_ context.Context) []models.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweep()

	out := make([]models.Signal, 0, len(f.cache))
	for i := range f.cache {
		if f.cache[i].Active {
			out = append(out, f.cache[i])
		}
	}
	return out
}

func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = nil
	return f.flush()
}
