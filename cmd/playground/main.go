package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/kernel"
	"github.com/wippyai/packed-call/registry"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to TOML config listing kernels to load")
		list        = flag.Bool("list", false, "List registered functions and exit")
		callName    = flag.String("call", "", "Function to call")
		argsLine    = flag.String("args", "", "Comma-separated argument literals")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error); empty disables logging")
		interactive = flag.Bool("interactive", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if err := run(*configPath, *callName, *argsLine, *logLevel, *list, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, callName, argsLine, logLevel string, listOnly, interactive bool) error {
	ctx := context.Background()

	if logLevel != "" {
		logger, err := buildLogger(logLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()
		registry.SetLogger(logger.Named("registry"))
		kernel.SetLogger(logger.Named("kernel"))
	}

	reg := registry.New()
	if err := registerDemos(reg); err != nil {
		return err
	}

	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		mods, err := loadKernels(ctx, reg, cfg)
		if err != nil {
			return err
		}
		defer func() {
			for _, m := range mods {
				kernel.Close(ctx, m)
			}
		}()
	}

	switch {
	case listOnly:
		for _, name := range reg.Names() {
			fmt.Println(name)
		}
		return nil

	case interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(reg)

	case callName != "":
		fn, err := reg.Get(callName)
		if err != nil {
			return err
		}
		args, err := parseArgLine(argsLine)
		if err != nil {
			return err
		}
		rv, err := fn.Call(args...)
		if err != nil {
			return fmt.Errorf("call %s: %w", callName, err)
		}
		fmt.Println(formatValue(&rv))
		return nil

	default:
		flag.Usage()
		return nil
	}
}

// buildLogger picks the production config, switching to the
// development console encoder at debug level.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// registerDemos installs the built-in functions the playground offers
// without any kernel loaded.
func registerDemos(reg *registry.Registry) error {
	demos := map[string]any{
		"demo.add":   func(a, b int64) int64 { return a + b },
		"demo.hypot": math.Hypot,
		"demo.upper": strings.ToUpper,
		"demo.repeat": func(s string, n int) (string, error) {
			if n < 0 {
				return "", errors.New("negative repeat count")
			}
			return strings.Repeat(s, n), nil
		},
		"demo.typedesc": func(s string) (abi.TypeDescriptor, error) {
			return abi.ParseTypeDescriptor(s)
		},
		"demo.fail": func(msg string) error {
			return errors.New(msg)
		},
	}
	for name, fn := range demos {
		if err := reg.RegisterFunc(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// parseArgLine splits a comma-separated literal list and infers a Go
// value for each entry: integer, float, true/false, null, quoted or
// bare string.
func parseArgLine(line string) ([]any, error) {
	fields, err := splitArgs(line)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		v, err := parseLiteral(f)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// splitArgs splits on commas outside double quotes. Backslash escapes
// inside quotes pass through for strconv.Unquote to resolve.
func splitArgs(line string) ([]string, error) {
	var fields []string
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && inQuote && i+1 < len(line):
			b.WriteByte(c)
			i++
			b.WriteByte(line[i])
		case c == '"':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in arguments")
	}
	if s := strings.TrimSpace(b.String()); s != "" || len(fields) > 0 {
		fields = append(fields, s)
	}
	return fields, nil
}

func parseLiteral(s string) (any, error) {
	switch s {
	case "":
		return nil, fmt.Errorf("empty argument literal")
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s: %w", s, err)
		}
		return unq, nil
	}
	if x, err := strconv.ParseInt(s, 10, 64); err == nil {
		return x, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return s, nil
}

// formatValue renders a call result for the terminal.
func formatValue(rv *packedcall.RetValue) string {
	switch rv.Tag() {
	case abi.TagNull:
		return "null"
	case abi.TagInt:
		x, _ := rv.Int64()
		return strconv.FormatInt(x, 10)
	case abi.TagFloat:
		f, _ := rv.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case abi.TagStr, abi.TagTypeDesc:
		s, _ := rv.Str()
		return s
	default:
		return "<" + rv.Tag().String() + ">"
	}
}
