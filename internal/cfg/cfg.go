package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

const (
	ProviderWatsonx = "watsonx"
	ProviderGemini  = "gemini"
)

type Config struct {
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Inference *InferenceCfg
	Watsonx   *WatsonxCfg
	Gemini    *GeminiCfg
	Fetch     *FetchCfg
	Prompts   *PromptsCfg
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxBodyBytes   int64
	SwaggerEnabled bool
}

// maxResponseMargin caps the share of WriteTimeout kept for writing the envelope.
const maxResponseMargin = 5 * time.Second

// RequestBudget is how long a handler may work so that its envelope is still written
// before WriteTimeout closes the connection. Zero means no limit.
func (c *HTTPConfig) RequestBudget() time.Duration {
	if c.WriteTimeout <= 0 {
		return 0
	}

	margin := c.WriteTimeout / 10
	if margin > maxResponseMargin {
		margin = maxResponseMargin
	}
	return c.WriteTimeout - margin
}

type GRPCConfig struct {
	Enabled     bool
	Port        string
	NetworkMode string
}

type InferenceCfg struct {
	Provider string        // watsonx | gemini
	Timeout  time.Duration // upper bound for a single completion call
}

type WatsonxCfg struct {
	URL        string // regional endpoint, e.g. https://eu-gb.ml.cloud.ibm.com
	APIKey     string
	ProjectID  string
	ModelID    string
	APIVersion string
	IAMURL     string
}

type GeminiCfg struct {
	APIKey string
	Model  string
}

type FetchCfg struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

type PromptsCfg struct {
	File string // optional YAML override, empty means built-in prompts
}

// Load reads the whole configuration from the environment.
// Missing inference credentials are not fatal: they surface per request as e.ErrMissingCredentials.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	grpc, err := loadGRPCConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	inference, err := loadInferenceCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	fetch, err := loadFetchCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	watsonx := loadWatsonxCfg()
	gemini := loadGeminiCfg()

	switch inference.Provider {
	case ProviderWatsonx:
		if watsonx.URL == "" || watsonx.APIKey == "" {
			log.Warnf("IBM_WATSON_URL or IBM_WATSON_API_KEY is not set, inference requests will fail")
		}
	case ProviderGemini:
		if gemini.APIKey == "" {
			log.Warnf("GEMINI_API_KEY is not set, inference requests will fail")
		}
	}

	// one image costs a fetch and two completions
	if perImage := fetch.Timeout + 2*inference.Timeout; http.RequestBudget() > 0 && http.RequestBudget() < perImage {
		log.Warnf("HTTP_WRITE_TIMEOUT %v leaves %v per request, one image may take up to %v; slow batches will be cut short",
			http.WriteTimeout, http.RequestBudget(), perImage)
	}

	return &Config{
		Http:      http,
		Grpc:      grpc,
		Inference: inference,
		Watsonx:   watsonx,
		Gemini:    gemini,
		Fetch:     fetch,
		Prompts:   &PromptsCfg{File: getEnv("PROMPTS_FILE")},
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 10 * time.Second
		defaultWriteTimeout = 5 * time.Minute // above one image: fetch plus two completions
		defaultIdleTimeout  = 60 * time.Second
		defaultMaxBodyBytes = 1 << 20
	)

	port := getEnvOrDefault("HTTP_PORT", getEnvOrDefault("PORT", defaultPort))

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	maxBody, err := parseIntEnv("MAX_BODY_BYTES", defaultMaxBodyBytes)
	if err != nil {
		log.Errorf(err, "invalid MAX_BODY_BYTES")
		return nil, err
	}

	swagger, err := parseBoolEnv("SWAGGER_ENABLED", true)
	if err != nil {
		log.Errorf(err, "invalid SWAGGER_ENABLED")
		return nil, err
	}

	return &HTTPConfig{
		Port:           port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxBodyBytes:   int64(maxBody),
		SwaggerEnabled: swagger,
	}, nil
}

func loadGRPCConfig(log logger.Logger) (*GRPCConfig, error) {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	enabled, err := parseBoolEnv("GRPC_ENABLED", false)
	if err != nil {
		log.Errorf(err, "invalid GRPC_ENABLED")
		return nil, err
	}

	return &GRPCConfig{
		Enabled:     enabled,
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadInferenceCfg(log logger.Logger) (*InferenceCfg, error) {
	const defaultTimeout = 90 * time.Second

	provider := strings.ToLower(getEnvOrDefault("INFERENCE_PROVIDER", ProviderWatsonx))
	if provider != ProviderWatsonx && provider != ProviderGemini {
		err := e.Wrap(fmt.Sprintf("INFERENCE_PROVIDER=%q", provider), e.ErrUnknownProvider)
		log.Errorf(err, "invalid INFERENCE_PROVIDER")
		return nil, err
	}

	timeout, err := parseDurationEnv("INFERENCE_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid INFERENCE_TIMEOUT")
		return nil, err
	}

	return &InferenceCfg{
		Provider: provider,
		Timeout:  timeout,
	}, nil
}

func loadWatsonxCfg() *WatsonxCfg {
	const (
		defaultModelID    = "mistralai/pixtral-12b"
		defaultAPIVersion = "2024-05-01"
		defaultIAMURL     = "https://iam.cloud.ibm.com/identity/token"
	)

	return &WatsonxCfg{
		URL:        strings.TrimRight(getEnv("IBM_WATSON_URL"), "/"),
		APIKey:     getEnv("IBM_WATSON_API_KEY"),
		ProjectID:  getEnv("IBM_WATSON_PROJECT_ID"),
		ModelID:    getEnvOrDefault("IBM_WATSON_MODEL_ID", defaultModelID),
		APIVersion: getEnvOrDefault("IBM_WATSON_API_VERSION", defaultAPIVersion),
		IAMURL:     getEnvOrDefault("IBM_IAM_URL", defaultIAMURL),
	}
}

func loadGeminiCfg() *GeminiCfg {
	const defaultModel = "gemini-2.5-flash"

	return &GeminiCfg{
		APIKey: getEnv("GEMINI_API_KEY"),
		Model:  getEnvOrDefault("GEMINI_MODEL", defaultModel),
	}
}

func loadFetchCfg(log logger.Logger) (*FetchCfg, error) {
	const (
		defaultTimeout   = 30 * time.Second
		defaultMaxBytes  = 20 << 20
		defaultUserAgent = "aarogyam-insights/1.0"
	)

	timeout, err := parseDurationEnv("FETCH_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid FETCH_TIMEOUT")
		return nil, err
	}

	maxBytes, err := parseIntEnv("FETCH_MAX_BYTES", defaultMaxBytes)
	if err != nil {
		log.Errorf(err, "invalid FETCH_MAX_BYTES")
		return nil, err
	}

	return &FetchCfg{
		Timeout:   timeout,
		MaxBytes:  int64(maxBytes),
		UserAgent: getEnvOrDefault("FETCH_USER_AGENT", defaultUserAgent),
	}, nil
}

// getEnv returns the trimmed value of the variable, or "" when it is unset.
func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key); value != "" {
		return value
	}

	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := getEnv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil || intValue <= 0 {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return intValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return b, nil
}
