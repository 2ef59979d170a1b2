package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu          sync.Mutex
	base        *zap.Logger
	serviceName = "default"
)

func SetServiceName(newName string) string {
	mu.Lock()
	defer mu.Unlock()

	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init настраивает общий production-логгер; без явного вызова логгер
// поднимется лениво при первом сообщении.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	mu.Lock()
	base = l
	mu.Unlock()
	return nil
}

func get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		if base == nil {
			base = zap.NewNop()
		}
	}
	return base.With(zap.String("service", serviceName))
}

func Info(format string, args ...interface{}) {
	get().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().Fatal(fmt.Sprintf(format, args...))
}

func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
