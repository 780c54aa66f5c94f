package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/grafy/internal/client"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/logging"
)

const usage = `usage: grafyctl [flags] <command> [args]

commands:
  health                         server health
  services [-category c]         list services and their tools
  discover <intent...>           rank services against an intent
  eval -e expr -x X -y Y [-t T]  evaluate f(x, y, t)
  exec <tool_id> [k=v ...]       run any tool; values are numbers, bools, JSON or strings
  presets [-tag t]               list preset surfaces
  preset <id>                    show one preset

flags:
`

type cli struct {
	client *client.Client
	out    io.Writer
	json   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("grafyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	serverURL := fs.String("server", envOr("GRAFY_URL", "http://localhost:8000"), "Server base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "Per-request timeout")
	asJSON := fs.Bool("json", false, "Print raw JSON")
	verbose := fs.Bool("v", false, "Log requests and retries")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger := logging.NewNop()
	if *verbose {
		l, err := logging.New(logging.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
		if err != nil {
			fmt.Fprintf(stderr, "grafyctl: %v\n", err)
			return 1
		}
		logger = l
	}
	defer func() { _ = logger.Close() }()

	c := &cli{
		client: client.New(client.Options{
			BaseURL:  *serverURL,
			Timeout:  *timeout,
			RetryMax: 2,
			Logger:   logger.Logger,
		}),
		out:  stdout,
		json: *asJSON,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintf(stderr, "grafyctl: %v\n", err)
		var usageErr usageError
		if errors.As(err, &usageErr) {
			return 2
		}
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "health":
		h, err := c.client.Health(ctx)
		if err != nil {
			return err
		}
		return c.print(h)

	case "services":
		fs := flag.NewFlagSet("services", flag.ContinueOnError)
		category := fs.String("category", "", "Category filter")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		services, err := c.client.Services(ctx, *category)
		if err != nil {
			return err
		}
		if c.json {
			return c.print(services)
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, s := range services {
			for _, t := range s.Tools {
				fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Description)
			}
		}
		return tw.Flush()

	case "discover":
		if len(args) == 0 {
			return usageError("discover needs an intent")
		}
		services, err := c.client.Discover(ctx, strings.Join(args, " "), 0)
		if err != nil {
			return err
		}
		if c.json {
			return c.print(services)
		}
		for _, s := range services {
			fmt.Fprintf(c.out, "%s\t%s\n", s.ID, s.Description)
		}
		return nil

	case "eval":
		fs := flag.NewFlagSet("eval", flag.ContinueOnError)
		expression := fs.String("e", "", "Expression in x, y and t")
		x := fs.Float64("x", 0, "x")
		y := fs.Float64("y", 0, "y")
		t := fs.Float64("t", 0, "t")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *expression == "" {
			return usageError("eval needs -e")
		}
		v, err := c.client.Evaluate(ctx, *expression, *x, *y, *t)
		if err != nil {
			return err
		}
		if v == nil {
			fmt.Fprintln(c.out, "undefined")
			return nil
		}
		fmt.Fprintln(c.out, strconv.FormatFloat(*v, 'g', -1, 64))
		return nil

	case "exec":
		if len(args) == 0 {
			return usageError("exec needs a tool id")
		}
		params, err := parseParams(args[1:])
		if err != nil {
			return usageError(err.Error())
		}
		res, err := c.client.Execute(ctx, args[0], params)
		if err != nil {
			return err
		}
		if err := c.print(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("%w: %s", client.ErrToolFailed, args[0])
		}
		return nil

	case "presets":
		fs := flag.NewFlagSet("presets", flag.ContinueOnError)
		tag := fs.String("tag", "", "Tag filter")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		list, err := c.client.Presets(ctx, *tag)
		if err != nil {
			return err
		}
		if c.json {
			return c.print(list)
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Expression)
		}
		return tw.Flush()

	case "preset":
		if len(args) != 1 {
			return usageError("preset needs exactly one id")
		}
		p, err := c.client.Preset(ctx, args[0])
		if err != nil {
			return err
		}
		return c.print(p)
	}
	return usageError("unknown command: " + cmd)
}

func (c *cli) print(v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// parseParams turns k=v pairs into tool params
func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad parameter %q: want key=value", pair)
		}
		params[k] = parseValue(v)
	}
	return params, nil
}

func parseValue(v string) interface{} {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
		var decoded interface{}
		if err := sonic.UnmarshalString(v, &decoded); err == nil {
			return decoded
		}
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
