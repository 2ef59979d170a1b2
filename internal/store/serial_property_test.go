package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Свойство: серийные номера строго растут при любой смеси add/remove,
// удаление никогда не возвращает номер в оборот.
func TestSerialMonotonicityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("серийники строго монотонны", prop.ForAll(
		func(ops []bool) bool {
			ctx := context.Background()
			f, err := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
			if err != nil {
				return false
			}

			var lastSerial int64
			var lastID string
			n := 0
			for _, removeAfter := range ops {
				n++
				sig := newSignal(fmt.Sprintf("PAIR%d/USDT", n), "5m")
				if _, err := f.Add(ctx, sig); err != nil {
					return false
				}
				if sig.Serial <= lastSerial {
					return false
				}
				lastSerial = sig.Serial
				lastID = sig.ID

				if removeAfter && lastID != "" {
					if err := f.Remove(ctx, lastID); err != nil {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
