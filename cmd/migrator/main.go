package main

import (
	"fmt"
	"log"
	"os"

	"github.com/khoahotran/member-directory/internal/config"
	"github.com/khoahotran/member-directory/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	if err := newRootCmd(cfg, appLogger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
