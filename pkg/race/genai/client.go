// Package genai resolves races through a Gemini-style generateContent
// endpoint. The service is an untrusted, best-effort oracle: a single
// attempt is made per race and every response is fully validated before
// use. Any failure is reported to the caller, which falls back to the
// deterministic simulator.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/race/roster"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-pro-preview"
	DefaultTimeout = 30 * time.Second
)

var (
	ErrServiceStatus            = errors.New("generative service returned non-success status")
	ErrNoCandidates             = errors.New("generative response contains no candidates")
	ErrMalformedResponse        = errors.New("generative response is malformed")
	ErrIncompleteClassification = errors.New("generative classification is incomplete")
)

type (
	Client struct {
		baseURL string
		apiKey  string
		model   string
		hc      *http.Client
		l       *log.Logger
	}
	Option func(*Client)

	// Request carries the full competitor context for one race.
	Request struct {
		Teams       []model.TeamSnapshot
		RaceName    string
		Competitors []roster.Competitor
	}

	// Outcome is the validated payload extracted from the response.
	// Classification rows carry no points yet; the assembler adds them.
	Outcome struct {
		Classification []model.ClassificationEntry
		Commentary     string
		Events         []string
	}
)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.l = l }
}

func NewClient(opts ...Option) *Client {
	ret := &Client{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		hc:      &http.Client{Timeout: DefaultTimeout},
		l:       log.Default().Named("genai"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// generateContent request/response envelope (our own wire types)
type (
	genRequest struct {
		Contents         []content `json:"contents"`
		GenerationConfig genConfig `json:"generationConfig"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	part struct {
		Text string `json:"text"`
	}
	genConfig struct {
		ResponseMimeType string         `json:"responseMimeType"`
		ResponseSchema   map[string]any `json:"responseSchema"`
	}
)

func responseSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"fullClassification": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"driverName": map[string]any{"type": "STRING"},
						"teamName":   map[string]any{"type": "STRING"},
						"position":   map[string]any{"type": "INTEGER"},
					},
					"required": []string{"driverName", "teamName", "position"},
				},
			},
			"commentary": map[string]any{"type": "STRING"},
			"events": map[string]any{
				"type":  "ARRAY",
				"items": map[string]any{"type": "STRING"},
			},
		},
		"required": []string{"fullClassification", "commentary", "events"},
	}
}

// SimulateRace performs exactly one generateContent call. No retries:
// the fallback simulator is cheaper than a second round trip.
func (c *Client) SimulateRace(ctx context.Context, req Request) (*Outcome, error) {
	body, err := json.Marshal(genRequest{
		Contents: []content{{Parts: []part{{Text: c.buildPrompt(req)}}}},
		GenerationConfig: genConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generative service: %w", err)
	}
	defer resp.Body.Close()
	c.l.Debug("generative service answered",
		log.Int("status", resp.StatusCode),
		log.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrServiceStatus, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	text, err := candidateText(payload)
	if err != nil {
		return nil, err
	}
	return c.parseOutcome(text, len(req.Competitors))
}

func (c *Client) buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulate an F1 race at %s.\n", req.RaceName)
	b.WriteString("Take into account the human teams' strategies (1-stop vs 2-stop).\n")
	b.WriteString("A 1-stop strategy is safer but slower per lap. ")
	b.WriteString("A 2-stop is aggressive and faster but risks traffic after pits.\n\n")
	b.WriteString("Human Teams Context:\n")
	for i := range req.Teams {
		t := &req.Teams[i]
		d1 := t.ActiveDriver(0)
		d2 := t.ActiveDriver(1)
		fmt.Fprintf(&b, "Team %q: Aero Lvl %d, Power Lvl %d, Chassis Lvl %d.\n",
			t.Name, t.Car.Aerodynamics, t.Car.PowerUnit, t.Car.Chassis)
		fmt.Fprintf(&b, "Drivers: %s (Pace: %d), %s (Pace: %d).\n",
			driverName(d1), driverPace(d1), driverName(d2), driverPace(d2))
		fmt.Fprintf(&b, "Race Strategy: %s\n", strategyDesc(t.CurrentStrategy))
	}
	rivals := lo.Map(roster.RivalTeams, func(rt roster.RivalTeam, _ int) string {
		return fmt.Sprintf("%s (%s)", rt.Name, strings.Join(rt.Drivers[:], ", "))
	})
	fmt.Fprintf(&b, "\nRival Teams & Drivers: %s.\n", strings.Join(rivals, "; "))

	// free-form generation drifts on names; pin the exact list we expect back
	names := lo.Map(req.Competitors, func(c roster.Competitor, _ int) string {
		return c.Name
	})
	fmt.Fprintf(&b, "\nGenerate a full classification of all %d drivers, "+
		"using exactly these names: %s.\n", len(names), strings.Join(names, ", "))
	fmt.Fprintf(&b, "Positions must be 1 to %d without duplicates.\n", len(names))
	b.WriteString("Generate a 3-paragraph professional commentary, mentioning " +
		"how the strategies played out for the human teams.\n")
	b.WriteString("List 3 key events (overtakes, pit stop blunders, or " +
		"strategic masterclasses).\n")
	return b.String()
}

func driverName(d *model.Driver) string {
	if d == nil {
		return "Unknown"
	}
	return d.Name
}

func driverPace(d *model.Driver) int {
	if d == nil {
		return 0
	}
	return d.Pace
}

func strategyDesc(s model.Strategy) string {
	if s == model.StrategyTwoStop {
		return "Aggressive attack, 2 pit stops, maximum pace but higher tire wear."
	}
	return "Conserving tires, 1 pit stop, consistent but slower pace."
}

// candidateText digs the generated text out of the response envelope.
func candidateText(payload []byte) (string, error) {
	parsed, err := oj.Parse(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	root, ok := parsed.(map[string]any)
	if !ok {
		return "", ErrMalformedResponse
	}
	candidates, ok := root["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	first, ok := candidates[0].(map[string]any)
	if !ok {
		return "", ErrMalformedResponse
	}
	cont, ok := first["content"].(map[string]any)
	if !ok {
		return "", ErrMalformedResponse
	}
	parts, ok := cont["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", ErrMalformedResponse
	}
	p, ok := parts[0].(map[string]any)
	if !ok {
		return "", ErrMalformedResponse
	}
	text, ok := p["text"].(string)
	if !ok || text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}

// parseOutcome validates the untrusted classification payload. The
// strict rule applies: the entry count must equal the expected
// competitor count and the positions must form exactly {1..N}.
//
//nolint:cyclop // validation is one linear pass
func (c *Client) parseOutcome(text string, expected int) (*Outcome, error) {
	parsed, err := oj.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, ErrMalformedResponse
	}
	rawClassification, ok := root["fullClassification"].([]any)
	if !ok {
		return nil, ErrMalformedResponse
	}
	if len(rawClassification) != expected {
		return nil, fmt.Errorf("%w: got %d entries, want %d",
			ErrIncompleteClassification, len(rawClassification), expected)
	}
	seen := make(map[int]bool, expected)
	entries := make([]model.ClassificationEntry, 0, expected)
	for _, raw := range rawClassification {
		row, ok := raw.(map[string]any)
		if !ok {
			return nil, ErrMalformedResponse
		}
		driver, _ := row["driverName"].(string)
		team, _ := row["teamName"].(string)
		pos, ok := asInt(row["position"])
		if !ok || driver == "" || team == "" {
			return nil, ErrMalformedResponse
		}
		if pos < 1 || pos > expected || seen[pos] {
			return nil, fmt.Errorf("%w: invalid or duplicate position %d",
				ErrIncompleteClassification, pos)
		}
		seen[pos] = true
		entries = append(entries, model.ClassificationEntry{
			DriverName: driver,
			TeamName:   team,
			Position:   pos,
		})
	}
	commentary, _ := root["commentary"].(string)
	if commentary == "" {
		return nil, ErrMalformedResponse
	}
	rawEvents, ok := root["events"].([]any)
	if !ok || len(rawEvents) == 0 {
		return nil, ErrMalformedResponse
	}
	events := make([]string, 0, len(rawEvents))
	for _, raw := range rawEvents {
		ev, ok := raw.(string)
		if !ok {
			return nil, ErrMalformedResponse
		}
		events = append(events, ev)
	}
	return &Outcome{
		Classification: entries,
		Commentary:     commentary,
		Events:         events,
	}, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
