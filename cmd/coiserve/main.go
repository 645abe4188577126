package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ericselin/coiserve"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// this is set by goreleaser
var version string

type options struct {
	configFilename string
	host           string
	port           int
	root           string
	trace          bool
	logFilename    string
	// names of the flags given on the command line
	set map[string]bool
}

func parseFlags(name string, args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configFilename, "config", "", "Path to YAML config file")
	fs.StringVar(&o.host, "host", "", "Host to listen on (default all interfaces)")
	fs.IntVar(&o.port, "port", coiserve.DefaultPort, "Port to listen on")
	fs.StringVar(&o.root, "root", coiserve.DefaultRoot, "Document root to serve files from")
	fs.BoolVar(&o.trace, "vv", false, "Verbosity: trace logging")
	fs.StringVar(&o.logFilename, "log-file", "", "Log file to use (in addition to stdout)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})
	return o, nil
}

// serverConfig resolves the server config: defaults, then config file, then flags.
func (o options) serverConfig() (coiserve.Config, error) {
	config := coiserve.Config{
		Port: coiserve.DefaultPort,
		Root: coiserve.DefaultRoot,
	}
	if o.configFilename != "" {
		fc, err := coiserve.LoadConfigFile(o.configFilename)
		if err != nil {
			return config, err
		}
		fc.Merge(&config)
	}
	if o.set["host"] {
		config.Host = o.host
	}
	if o.set["port"] {
		config.Port = o.port
	}
	if o.set["root"] {
		config.Root = o.root
	}
	return config, nil
}

func main() {
	if version == "" {
		version = "DEV"
	}

	opts, err := parseFlags(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		os.Exit(2)
	}

	// set log level
	logLevel := zerolog.DebugLevel
	if opts.trace {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if opts.logFilename != "" {
		if logFileOutput, err := os.OpenFile(opts.logFilename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			defer logFileOutput.Close()
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config, err := opts.serverConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	config.Logger = &log.Logger

	server := coiserve.New(config)
	if err := server.Listen(); err != nil {
		var bindErr *coiserve.BindError
		var configErr *coiserve.ConfigError
		switch {
		case errors.As(err, &configErr):
			log.Fatal().Err(err).Msg("Invalid configuration")
		case errors.As(err, &bindErr):
			log.Fatal().Err(err).Msg("Cannot listen")
		default:
			log.Fatal().Err(err).Msg("Cannot start server")
		}
	}
	log.Info().Msgf("Serving %s at port %d with COOP/COEP headers", config.Root, config.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- server.Serve()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		stop()
		if err := server.Stop(context.Background()); err != nil {
			log.Error().Err(err).Msg("Could not shut down cleanly")
		}
		<-done
	}
}
