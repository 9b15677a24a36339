// Command emuavr runs the USART0 driver against a simulated ATmega328P and
// prints whatever the transmitter sends.
//
// Usage:
//
//	emuavr [flags]
//
// Examples:
//
//	# Send the default greeting at 9600 8N2
//	emuavr
//
//	# 115200 baud, 8N1, record every register access
//	emuavr -baud 115200 -stop-bits one -trace usart.cbor
//
//	# Type lines into the transmitter
//	emuavr -interactive
//
//	# Print a recorded trace
//	emuavr -dump usart.cbor
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"emuavr/sim"
	"emuavr/usart"
)

type uint32Value uint32

func (v *uint32Value) String() string { return strconv.FormatUint(uint64(*v), 10) }

func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*v = uint32Value(n)
	return nil
}

// options are the command-line settings that are not part of Config.
type options struct {
	configPath  string
	tracePath   string
	dumpPath    string
	interactive bool
}

func registerFlags(fs *flag.FlagSet, cfg *Config, opts *options) {
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.tracePath, "trace", "", "Record bus accesses to this CBOR file")
	fs.StringVar(&opts.dumpPath, "dump", "", "Print a recorded trace and exit")
	fs.BoolVar(&opts.interactive, "interactive", false, "Transmit lines typed at a prompt")

	fs.Var((*uint32Value)(&cfg.ClockHz), "clock", "CPU clock in Hz")
	fs.Var((*uint32Value)(&cfg.Baud), "baud", "Baud rate")
	fs.StringVar(&cfg.StopBits, "stop-bits", cfg.StopBits, "Stop bits: one, two")
	fs.StringVar(&cfg.CharSize, "char-size", cfg.CharSize, "Character size: 5, 6, 7, 8")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Mode: disabled, transmit, receive, transmit-receive")
	fs.IntVar(&cfg.TxDelay, "tx-delay", cfg.TxDelay, "Status polls the data register stays busy per byte")
	fs.StringVar(&cfg.Message, "message", cfg.Message, "Text to transmit")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
}

// parseArgs parses args over the defaults. A -config file is applied
// first; flags given on the command line override it.
func parseArgs(args []string, stderr io.Writer) (Config, options, error) {
	cfg := defaultConfig()
	var opts options

	fs := flag.NewFlagSet("emuavr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	registerFlags(fs, &cfg, &opts)
	if err := fs.Parse(args); err != nil {
		return cfg, opts, err
	}

	if opts.configPath != "" {
		if err := applyConfigFile(fs, opts.configPath, &cfg); err != nil {
			return cfg, opts, err
		}
	}
	return cfg, opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the whole command; it returns the process exit code so that every
// deferred close runs before main exits.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.dumpPath != "" {
		if err := dumpFile(opts.dumpPath, stdout); err != nil {
			fmt.Fprintln(stderr, "dump:", err)
			return 1
		}
		return 0
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var (
		out io.Writer = stdout
		con *console
	)
	if opts.interactive {
		if con, err = newConsole(stdin, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer con.Close()
		out = con.Stdout()
	}

	var rec *sim.Recorder
	if opts.tracePath != "" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			logger.Error("create trace", slog.Any("err", err))
			return 1
		}
		defer f.Close()
		if rec, err = sim.NewRecorder(f, "atmega328p", cfg.ClockHz); err != nil {
			logger.Error("start trace", slog.Any("err", err))
			return 1
		}
		defer func() {
			if err := rec.Err(); err != nil {
				logger.Error("trace incomplete", slog.Any("err", err))
			}
		}()
	}

	m, d, err := newBoard(cfg, out, logger, rec)
	if err != nil {
		logger.Error("usart0 setup failed", slog.Any("err", err))
		return 1
	}

	if con != nil {
		if err := con.Run(d); err != nil {
			logger.Error("console", slog.Any("err", err))
			return 1
		}
		return 0
	}
	d.TransmitString(cfg.Message)
	logger.Debug("done", slog.Uint64("bytes", m.USART.Sent()))
	return 0
}

// applyConfigFile loads path into cfg, then re-applies the flags given on
// the command line so they override the file.
func applyConfigFile(fs *flag.FlagSet, path string, cfg *Config) error {
	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })

	if err := loadConfigFile(path, cfg); err != nil {
		return err
	}
	for name, v := range set {
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("flag -%s: %w", name, err)
		}
	}
	return nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// newBoard builds the simulated chip, takes USART0 and commits cfg to it.
// A non-nil tracer sees every register access, the commit included.
func newBoard(cfg Config, out io.Writer, logger *slog.Logger, tracer *sim.Recorder) (*sim.Machine, *usart.Driver, error) {
	m := sim.NewMachine(out, logger)
	if tracer != nil {
		m.Bus.Tracer = tracer
	}

	u, err := cfg.configure(m.USART0.Take())
	if errors.Is(err, usart.ErrIncompatibleSettings) {
		return nil, nil, fmt.Errorf("clock %d Hz / baud %d: %w", cfg.ClockHz, cfg.Baud, err)
	}
	if err != nil {
		return nil, nil, err
	}
	m.USART.TxDelay = cfg.TxDelay

	d := u.Commit()
	logger.Info("usart0 initialized",
		slog.Uint64("baud", uint64(u.Baud())),
		slog.Uint64("actual_baud", uint64(u.ActualBaud())),
		slog.String("baud_error", fmt.Sprintf("%+.2f%%", u.BaudError()*100)),
		slog.Int("divisor", int(u.Divisor())),
		slog.String("frame", m.USART.Frame()),
		slog.String("mode", u.Mode().String()),
	)
	return m, d, nil
}

func dumpFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dumpTrace(f, w)
}

func dumpTrace(r io.Reader, w io.Writer) error {
	h, events, err := sim.ReadTrace(r)
	if h.Session == "" {
		return err
	}
	fmt.Fprintf(w, "session %s device %s clock %d Hz started %s\n",
		h.Session, h.Device, h.ClockHz, h.Started.Format("2006-01-02T15:04:05.000Z07:00"))
	for _, e := range events {
		fmt.Fprintln(w, e)
	}
	return err
}
