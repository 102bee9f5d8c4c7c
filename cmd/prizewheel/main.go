package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"prizewheel/pkg/db/pagination"
	"prizewheel/pkg/errutil"
	"prizewheel/services/redeem"
)

const usage = `Usage: prizewheel [flags] <command> [args]

Commands:
  spin              spin the wheel once (one spin per device per cooldown window)
  status            show whether the wheel is open and the remaining countdown
  rewards           list the reward table with probabilities and spins seen
  history           list past spins on this device, newest first
  link <reward-id>  print the WhatsApp redeem link for a reward
  serve             run the local HTTP API

Flags:
`

var errUsage = errors.New("invalid usage")

type cliOptions struct {
	configFile string
	watch      bool
	limit      int
	cursor     string
	qr         string
	size       int
	json       bool
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("prizewheel", pflag.ContinueOnError)
	var opts cliOptions
	fs.StringVarP(&opts.configFile, "config", "c", "", "path to config.yaml")
	fs.BoolVarP(&opts.watch, "watch", "w", false, "status: keep printing the countdown until the wheel opens")
	fs.IntVarP(&opts.limit, "limit", "n", pagination.DefaultLimit, "history: spins per page")
	fs.StringVar(&opts.cursor, "cursor", "", "history: cursor of the page to show")
	fs.StringVar(&opts.qr, "qr", "", "link: also write a QR code PNG to this file")
	fs.IntVar(&opts.size, "size", redeem.DefaultQRSize, "link: QR code size in pixels")
	fs.BoolVar(&opts.json, "json", false, "print JSON instead of text")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, opts, fs.Args(), os.Stdout)
	if errors.Is(err, errUsage) {
		fs.Usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "prizewheel:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func run(ctx context.Context, opts cliOptions, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	name, rest := args[0], args[1:]
	switch name {
	case "serve":
		return serve(opts)
	case "spin", "status", "rewards", "history":
		if len(rest) != 0 {
			return fmt.Errorf("%w: %s takes no arguments", errUsage, name)
		}
	case "link":
		if len(rest) != 1 {
			return fmt.Errorf("%w: link needs exactly one reward id", errUsage)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	return withApp(ctx, opts, func(d deps) error {
		switch name {
		case "spin":
			return cmdSpin(ctx, d, opts, out)
		case "status":
			return cmdStatus(ctx, d, opts, out)
		case "rewards":
			return cmdRewards(ctx, d, opts, out)
		case "history":
			return cmdHistory(ctx, d, opts, out)
		default:
			return cmdLink(d, opts, rest[0], out)
		}
	})
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}

	switch errutil.StatusOf(err) {
	case errutil.StatusTooManyRequests:
		return 3
	case errutil.StatusClientClosedRequest:
		return 130
	default:
		return 1
	}
}
