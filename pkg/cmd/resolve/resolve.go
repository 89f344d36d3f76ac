package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/config"
	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/race/genai"
	"github.com/apexgp/race-engine/pkg/race/online"
	"github.com/apexgp/race-engine/pkg/race/resolve"
	"github.com/apexgp/race-engine/pkg/utils"
)

var (
	raceIndex int
	seed      int64
	offline   bool
	room      string
	asHost    bool
)

func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve roster-file",
		Short: "resolves a single race for the teams in the given roster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveRace(cmd.Context(), args[0])
		},
	}
	cmd.Flags().IntVar(&raceIndex, "race-index", 0,
		"zero-based index of the race in the season")
	cmd.Flags().Float64Var(&config.Difficulty, "difficulty", 1.0,
		"score multiplier applied to scripted rivals")
	cmd.Flags().Int64Var(&seed, "seed", 0,
		"seed for the simulation randomness (0 uses the current time)")
	cmd.Flags().BoolVar(&offline, "offline", false,
		"skip the generative path and use the simulator directly")
	cmd.Flags().StringVar(&room, "room", "",
		"room code of an online session")
	cmd.Flags().BoolVar(&asHost, "host", false,
		"act as session host (resolve and publish the result)")
	cmd.Flags().StringVar(&config.WaitForServices, "wait-for-services", "15s",
		"how long to wait until services are ready")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format")
	cmd.Flags().StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules applied to component loggers")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	var logger *log.Logger
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
}

func resolveRace(ctx context.Context, rosterFile string) error {
	setupLogger()

	var store *online.Store
	if room != "" {
		if timeout, err := time.ParseDuration(config.WaitForServices); err == nil {
			if err := utils.WaitForTCP(
				utils.ExtractFromNatsURL(config.NatsURL), timeout); err != nil {
				return err
			}
		}
		conn, err := nats.Connect(config.NatsURL)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", config.NatsURL, err)
		}
		defer conn.Close()
		store, err = newStore(ctx, conn)
		if err != nil {
			return err
		}
	}

	// non-host participants only wait for the host's result
	if store != nil && !asHost {
		log.Info("waiting for host result", log.String("room", room))
		result, err := store.AwaitResult(ctx, room)
		if err != nil {
			return err
		}
		return printResult(result)
	}

	// only the resolving side needs the roster
	teams, err := loadRoster(rosterFile)
	if err != nil {
		return err
	}
	result, err := newResolver().Resolve(ctx, teams, raceIndex, config.Difficulty)
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.PublishResult(ctx, room, result); err != nil {
			return err
		}
	}
	return printResult(result)
}

func loadRoster(rosterFile string) ([]model.TeamSnapshot, error) {
	data, err := os.ReadFile(rosterFile)
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	var teams []model.TeamSnapshot
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("parsing roster file: %w", err)
	}
	return teams, nil
}

func newResolver() *resolve.Resolver {
	opts := []resolve.Option{}
	if seed != 0 {
		opts = append(opts, resolve.WithRandom(rand.New(rand.NewSource(seed))))
	}
	if !offline && config.GenAIAPIKey != "" {
		timeout, err := time.ParseDuration(config.GenAITimeout)
		if err != nil {
			timeout = genai.DefaultTimeout
		}
		opts = append(opts, resolve.WithGenerativeClient(genai.NewClient(
			genai.WithBaseURL(config.GenAIBaseURL),
			genai.WithAPIKey(config.GenAIAPIKey),
			genai.WithModel(config.GenAIModel),
			genai.WithTimeout(timeout),
		)))
	}
	return resolve.NewResolver(opts...)
}

func newStore(ctx context.Context, conn *nats.Conn) (*online.Store, error) {
	opts := []online.Option{online.WithBucket(config.RoomBucket)}
	if d, err := time.ParseDuration(config.PollInterval); err == nil {
		opts = append(opts, online.WithPollInterval(d))
	}
	if d, err := time.ParseDuration(config.AwaitTimeout); err == nil {
		opts = append(opts, online.WithAwaitTimeout(d))
	}
	return online.NewStore(ctx, conn, opts...)
}

func printResult(result *model.RaceResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
