// Command openelex собирает результаты выборов по юрисдикциям Мэриленда
// с портала избирательной комиссии штата.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Totarae/openelex/internal/config"
	"github.com/Totarae/openelex/internal/database"
	"github.com/Totarae/openelex/internal/tasks"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	logger, _ := zap.NewProduction()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger)
	stop()
	_ = logger.Sync()

	exit(code)
}

// exit единственная точка выхода процесса с ненулевым кодом.
// main вызывает её последней, после stop() и logger.Sync(), поэтому в main
// нет отложенных вызовов, которые os.Exit мог бы пропустить.
// Анализатор noexit проверяет только тело main.
func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *zap.Logger) int {
	registry := tasks.Builtin()

	cfg, err := config.NewConfig(args)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		registry.Usage(stderr)
		return exitUsage
	}
	if len(cfg.Args) == 0 {
		registry.Usage(stderr)
		return exitUsage
	}

	env := &tasks.Env{
		Config:  cfg,
		Logger:  logger,
		Out:     stdout,
		Build:   newBuilder(cfg, logger),
		Migrate: database.Migrate,
	}

	name, taskArgs := cfg.Args[0], cfg.Args[1:]
	if err := registry.Run(ctx, env, name, taskArgs); err != nil {
		switch {
		case errors.Is(err, tasks.ErrUnknownTask):
			fmt.Fprintln(stderr, err)
			registry.Usage(stderr)
			return exitUsage
		case errors.Is(err, flag.ErrHelp):
			return exitUsage
		}
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}
