package main

import (
	"context"
	"fmt"
	"os"

	"signals_bot/internal/modules/config"
	"signals_bot/internal/store"
	"signals_bot/pkg/logger"

	"github.com/bytedance/sonic"
)

// storectl — сервисная утилита для кэша сигналов: dump / clear.
func main() {
	logger.SetServiceName("storectl")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("config: %v", err)
	}

	st, err := store.New(ctx, cfg)
	if err != nil {
		logger.Fatal("store: %v", err)
	}

	switch os.Args[1] {
	case "dump":
		for _, sig := range st.ActiveSignals(ctx) {
			line, err := sonic.Marshal(sig)
			if err != nil {
				logger.Fatal("marshal %s: %v", sig.ID, err)
			}
			fmt.Println(string(line))
		}
	case "clear":
		if err := st.Clear(ctx); err != nil {
			logger.Fatal("clear: %v", err)
		}
		fmt.Println("store cleared")
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storectl <dump|clear>")
}
