package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	GenAIBaseURL      string  // base URL of the generative text service
	GenAIAPIKey       string  // API key for the generative text service
	GenAIModel        string  // model to use for race resolution
	GenAITimeout      string  // timeout for a single generative request
	Difficulty        float64 // score multiplier applied to scripted rivals
	NatsURL           string  // URL of the NATS server used for online mode
	RoomBucket        string  // name of the KV bucket holding shared race results
	PollInterval      string  // interval for the non-host result poll
	AwaitTimeout      string  // max duration a non-host waits for the shared result
	LogLevel          string  // sets the log level (zap log level values)
	LogFormat         string  // text vs json
	LogFilter         string  // zapfilter rules for component loggers
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry
	ProfilingPort     int     // port for profiling
	HTTPServerAddr    string  // listen addr for the HTTP server
	WaitForServices   string  // duration to wait for other services to be ready
)
