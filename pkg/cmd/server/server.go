package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/config"
	"github.com/apexgp/race-engine/pkg/race/genai"
	"github.com/apexgp/race-engine/pkg/race/resolve"
	"github.com/apexgp/race-engine/pkg/server"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the race resolution HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVarP(&config.HTTPServerAddr,
		"http-server-addr",
		"a",
		"localhost:8080",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter,
		"log-filter",
		"",
		"zapfilter rules applied to component loggers")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

//nolint:funlen // by design
func startServer() error {
	var logger *log.Logger
	var telemetry *config.Telemetry
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		logger = log.NewFiltered(logger, config.LogFilter)
	}
	log.ResetDefault(logger)

	log.Debug("Config:",
		log.String("genai-url", config.GenAIBaseURL),
		log.String("genai-model", config.GenAIModel),
		log.String("addr", config.HTTPServerAddr),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	resolverOpts := []resolve.Option{}
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(context.Background()); err == nil {
			resolverOpts = append(resolverOpts,
				resolve.WithTracer(otel.Tracer("race-engine")))
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}
	if config.GenAIAPIKey != "" {
		timeout, err := time.ParseDuration(config.GenAITimeout)
		if err != nil {
			timeout = genai.DefaultTimeout
		}
		resolverOpts = append(resolverOpts, resolve.WithGenerativeClient(
			genai.NewClient(
				genai.WithBaseURL(config.GenAIBaseURL),
				genai.WithAPIKey(config.GenAIAPIKey),
				genai.WithModel(config.GenAIModel),
				genai.WithTimeout(timeout),
			)))
	} else {
		log.Warn("No API key configured, races resolve via the simulator only")
	}

	handler := server.NewHandler(
		server.WithResolver(resolve.NewResolver(resolverOpts...)))

	log.Info("Starting HTTP server", log.String("addr", config.HTTPServerAddr))
	//nolint:gosec // by design
	srv := &http.Server{
		Addr:    config.HTTPServerAddr,
		Handler: h2c.NewHandler(newCORS().Handler(handler.Mux()), &http2.Server{}),
	}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	select {
	case err := <-errChan:
		log.Error("server could not be started", log.ErrorField(err))
		return err
	case v := <-sigChan:
		log.Debug("Got signal ", log.Any("signal", v))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("could not shutdown server gracefully", log.ErrorField(err))
	}
	if telemetry != nil {
		telemetry.Shutdown()
	}

	log.Info("Server terminated")
	return nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	// The game shells are browser based; keep the CORS setup permissive.
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			// Allow all origins, which effectively disables CORS.
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Accept",
			"Accept-Encoding",
			"Content-Encoding",
		},
		// Let browsers cache CORS information for longer, which reduces the number
		// of preflight requests.
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
