package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/the-monkeys/fraud_support/api"
	"github.com/the-monkeys/fraud_support/apiclient"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/logger"
)

var errUsage = errors.New("usage")

func main() {
	// stdout carries command output only.
	logger.SetOutput(os.Stderr)
	defer logger.Sync()

	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", apiclient.Message(err, ""))
		}
		os.Exit(1)
	}
}

// run executes one console command. Configuration comes from the environment, overridden
// by the global flags.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return errUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return errUsage
	}

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("base-url", "", "case API base URL (API_BASE_URL)")
	fs.String("session-backend", "", "session store: memory or redis (SESSION_BACKEND)")
	fs.String("redis-host", "", "redis address for the session store (REDIS_HOST)")
	fs.Duration("timeout", 0, "request timeout (API_TIMEOUT)")
	format := fs.StringP("format", "o", "table", "output format: table, json or csv")
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: fraud_console %s %s\n\n%s\n", args[0], cmd.args, fs.FlagUsages())
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() < cmd.nargs {
		fs.Usage()
		return errUsage
	}

	v := viper.New()
	bindFlags(v, fs)
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.ZapForService("fraud_console")
	a, err := api.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnw("closing api", "err", err)
		}
	}()

	out := &printer{w: stdout, format: *format}
	return cmd.run(api.WithAPI(ctx, a), fs, out)
}

// bindFlags maps global flags onto configuration keys. Only flags given on the command line
// override the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	keys := map[string]string{
		"base-url":        "api.base_url",
		"session-backend": "session.backend",
		"redis-host":      "redis.host",
		"timeout":         "api.timeout",
	}
	for flag, key := range keys {
		if f := fs.Lookup(flag); f != nil && f.Changed {
			_ = v.BindPFlag(key, f)
		}
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: fraud_console <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %s\n", name, commands[name].summary)
	}
}
