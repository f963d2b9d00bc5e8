// Command meltica-rest queries an exchange through the unified REST client
// and prints the normalized result as JSON.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/coachpo/meltica-rest/internal/adapters"
	"github.com/coachpo/meltica-rest/internal/config"
	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/observability"
	"github.com/coachpo/meltica-rest/internal/provider"
	"github.com/coachpo/meltica-rest/internal/telemetry"
)

const (
	defaultConfigPath        = "config/app.yaml"
	telemetryShutdownTimeout = 5 * time.Second
	meterName                = "github.com/coachpo/meltica-rest"
)

var errUsage = errors.New("usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "meltica-rest: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	envFile    string
	exchange   string
	command    string
	args       []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("meltica-rest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", fmt.Sprintf("Path to application configuration file (default: %s)", defaultConfigPath))
	fs.StringVar(&opts.envFile, "env-file", "", "dotenv file with credentials (default: .env when present)")
	fs.StringVar(&opts.exchange, "exchange", "", "exchange id: "+strings.Join(exchangeNames(), ", "))
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: meltica-rest -exchange ID [flags] COMMAND [ARGS]\n\ncommands:\n")
		for _, name := range commandNames() {
			fmt.Fprintf(stderr, "  %-12s %s\n", name, commands[name].usage)
		}
		fmt.Fprintln(stderr, "\nflags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}
	rest := fs.Args()
	if strings.TrimSpace(opts.exchange) == "" || len(rest) == 0 {
		fs.Usage()
		return options{}, errUsage
	}
	opts.command, opts.args = rest[0], rest[1:]
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cmd, ok := commands[opts.command]
	if !ok {
		return fmt.Errorf("unknown command %q", opts.command)
	}
	if len(opts.args) < cmd.minArgs {
		return fmt.Errorf("%s: %s", opts.command, cmd.usage)
	}

	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogrusLogger(stderr, cfg.Logging.Level, cfg.Logging.Format).WithComponent("cli")
	observability.SetLogger(logger)

	telemetryProvider, err := telemetry.NewProvider(ctx, cfg.Telemetry.Provider(cfg.Environment))
	if err != nil {
		return fmt.Errorf("initialise telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", observability.Field{Key: "error", Value: err})
		}
	}()

	client, err := buildClient(ctx, cfg, opts.exchange, logger, telemetryProvider)
	if err != nil {
		return err
	}
	logger.Debug("client ready",
		observability.Field{Key: "exchange", Value: client.ID()},
		observability.Field{Key: "env", Value: cfg.Environment},
		observability.Field{Key: "command", Value: opts.command})

	result, err := cmd.run(ctx, client, opts.args)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(encoded))
	return err
}

func buildClient(ctx context.Context, cfg config.AppConfig, name string, logger observability.Logger, tp *telemetry.Provider) (exchange.Exchange, error) {
	specs, err := config.BuildProviderSpecs(cfg, config.Exchange(name))
	if err != nil {
		return nil, err
	}
	for i := range specs {
		specs[i].Client.Logger = logger
		specs[i].Client.Meter = tp.Meter(meterName)
	}

	registry := provider.NewRegistry()
	adapters.RegisterAll(registry, nil)
	manager := provider.NewManager(registry)
	if _, err := manager.Start(ctx, specs); err != nil {
		return nil, fmt.Errorf("initialise exchange: %w", err)
	}
	client, ok := manager.Client(specs[0].Name)
	if !ok {
		return nil, fmt.Errorf("exchange %q not started", name)
	}
	logger.Debug("exchange configured",
		observability.Field{Key: "exchange", Value: specs[0].Exchange},
		observability.Field{Key: "sandbox", Value: specs[0].Sandbox},
		observability.Field{Key: "api_key", Value: observability.Redact(specs[0].Client.Credentials.APIKey)})
	return client, nil
}

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, ex exchange.Exchange, args []string) (any, error)
}

var commands = map[string]command{
	"describe": {
		usage: "static descriptor: capabilities, timeframes, fees",
		run: func(_ context.Context, ex exchange.Exchange, _ []string) (any, error) {
			return ex.Describe(), nil
		},
	},
	"time": {
		usage: "server time in milliseconds",
		run: func(ctx context.Context, ex exchange.Exchange, _ []string) (any, error) {
			ms, err := ex.FetchTime(ctx, nil)
			if err != nil {
				return nil, err
			}
			return map[string]any{"time": ms, "iso": time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)}, nil
		},
	},
	"markets": {
		usage: "list markets",
		run: func(ctx context.Context, ex exchange.Exchange, _ []string) (any, error) {
			return ex.LoadMarkets(ctx, false)
		},
	},
	"currencies": {
		usage: "list currencies",
		run: func(ctx context.Context, ex exchange.Exchange, _ []string) (any, error) {
			return ex.FetchCurrencies(ctx, nil)
		},
	},
	"ticker": {
		usage:   "SYMBOL",
		minArgs: 1,
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			return ex.FetchTicker(ctx, args[0], nil)
		},
	},
	"tickers": {
		usage: "[SYMBOL...]",
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			return ex.FetchTickers(ctx, args, nil)
		},
	},
	"book": {
		usage:   "SYMBOL [LIMIT]",
		minArgs: 1,
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			limit, err := optionalInt(args, 1)
			if err != nil {
				return nil, err
			}
			return ex.FetchOrderBook(ctx, args[0], limit, nil)
		},
	},
	"trades": {
		usage:   "SYMBOL [LIMIT]",
		minArgs: 1,
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			limit, err := optionalInt(args, 1)
			if err != nil {
				return nil, err
			}
			return ex.FetchTrades(ctx, args[0], exchange.Query{Limit: limit})
		},
	},
	"ohlcv": {
		usage:   "SYMBOL TIMEFRAME [LIMIT]",
		minArgs: 2,
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			limit, err := optionalInt(args, 2)
			if err != nil {
				return nil, err
			}
			return ex.FetchOHLCV(ctx, args[0], args[1], exchange.Query{Limit: limit})
		},
	},
	"balance": {
		usage: "account balances",
		run: func(ctx context.Context, ex exchange.Exchange, _ []string) (any, error) {
			return ex.FetchBalance(ctx, nil)
		},
	},
	"open-orders": {
		usage: "[SYMBOL]",
		run: func(ctx context.Context, ex exchange.Exchange, args []string) (any, error) {
			symbol := ""
			if len(args) > 0 {
				symbol = args[0]
			}
			return ex.FetchOpenOrders(ctx, symbol, exchange.Query{})
		},
	},
}

func optionalInt(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", args[i])
	}
	return n, nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func exchangeNames() []string {
	known := config.KnownExchanges()
	names := make([]string, 0, len(known))
	for _, name := range known {
		names = append(names, string(name))
	}
	return names
}
