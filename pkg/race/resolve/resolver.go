// Package resolve is the engine entry point. It attempts generative
// resolution first and silently degrades to the deterministic simulator;
// either path's ranking passes through the same result assembly.
package resolve

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/race/genai"
	"github.com/apexgp/race-engine/pkg/race/roster"
	"github.com/apexgp/race-engine/pkg/race/sim"
)

var ErrNoTeams = errors.New("no teams in roster")

// RaceSimulator is the boundary to the generative service.
type RaceSimulator interface {
	SimulateRace(ctx context.Context, req genai.Request) (*genai.Outcome, error)
}

type (
	Resolver struct {
		genClient RaceSimulator
		rnd       *rand.Rand
		l         *log.Logger
		tracer    trace.Tracer
	}
	Option func(*Resolver)
)

// WithGenerativeClient enables the generative resolution path. Without
// it every race resolves through the deterministic simulator.
func WithGenerativeClient(c RaceSimulator) Option {
	return func(r *Resolver) { r.genClient = c }
}

// WithRandom injects the randomness source used for scoring jitter and
// rival pace synthesis. Tests fix the seed through this option.
func WithRandom(rnd *rand.Rand) Option {
	return func(r *Resolver) { r.rnd = rnd }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.l = l }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Resolver) { r.tracer = tracer }
}

func NewResolver(opts ...Option) *Resolver {
	ret := &Resolver{
		l:      log.Default().Named("resolve"),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.rnd == nil {
		ret.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ret
}

// Resolve produces the complete result for one race. difficulty scales
// scripted rival scores only; values <= 0 mean the default 1.0.
// Precondition: every team carries two active drivers (gated by the
// caller); an empty team slice is rejected.
func (r *Resolver) Resolve(
	ctx context.Context,
	teams []model.TeamSnapshot,
	raceIndex int,
	difficulty float64,
) (*model.RaceResult, error) {
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}
	resolutionID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, "race.resolve",
		trace.WithAttributes(
			attribute.Int("race.index", raceIndex),
			attribute.Float64("race.difficulty", difficulty),
			attribute.String("race.resolution_id", resolutionID)))
	defer span.End()

	raceName := RaceName(raceIndex)
	field := roster.Build(teams, r.rnd)
	r.l.Info("resolving race",
		log.String("resolutionId", resolutionID),
		log.String("race", raceName),
		log.Int("competitors", len(field)))

	if r.genClient != nil {
		outcome, err := r.genClient.SimulateRace(ctx, genai.Request{
			Teams:       teams,
			RaceName:    raceName,
			Competitors: field,
		})
		if err == nil {
			span.SetAttributes(attribute.String("race.path", "generative"))
			return assemble(raceName, teams, outcome), nil
		}
		// degrade silently; the fallback produces a complete result
		r.l.Warn("generative resolution failed, using simulator",
			log.String("resolutionId", resolutionID),
			log.ErrorField(err))
	}
	span.SetAttributes(attribute.String("race.path", "simulated"))
	ranked := sim.Rank(field, difficulty, r.rnd)
	return assemble(raceName, teams, simulatedOutcome(raceName, ranked)), nil
}
