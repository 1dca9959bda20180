package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// GlobalConfig holds all configuration for the condominium service.
// Every connection detail comes from the environment with no default, so a
// misconfigured deployment fails at startup, not at first use.
type GlobalConfig struct {
	host     string
	port     string
	logLevel string

	database DatabaseConfig

	rabbitHost string
	rabbitPort int32
	rabbitUser string
	rabbitPass string

	realtimeAPIURL string
	realtimeAPIKey string

	mediaGatewayURL string
	authServiceURL  string

	sessionTokenTTL time.Duration
	approvalTTL     time.Duration
}

// DatabaseConfig holds PostgreSQL connection details
type DatabaseConfig struct {
	host     string
	port     int
	user     string
	password string
	dbName   string
}

func (d DatabaseConfig) GetHost() string     { return d.host }
func (d DatabaseConfig) GetPort() int        { return d.port }
func (d DatabaseConfig) GetUser() string     { return d.user }
func (d DatabaseConfig) GetPassword() string { return d.password }
func (d DatabaseConfig) GetDBName() string   { return d.dbName }

// NewConfig loads configuration from environment variables
func NewConfig() (*GlobalConfig, error) {
	host, err := requireEnv("HOST")
	if err != nil {
		return nil, err
	}
	port, err := requireEnv("PORT")
	if err != nil {
		return nil, err
	}
	logLevel, err := requireEnv("LOG_LEVEL")
	if err != nil {
		return nil, err
	}

	dbHost, err := requireEnv("DB_HOST")
	if err != nil {
		return nil, err
	}
	dbPortStr, err := requireEnv("DB_PORT")
	if err != nil {
		return nil, err
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("DB_PORT must be a valid integer: %w", err)
	}
	dbUser, err := requireEnv("DB_USER")
	if err != nil {
		return nil, err
	}
	dbPass, err := requireEnv("DB_PASS")
	if err != nil {
		return nil, err
	}
	dbName, err := requireEnv("DB_NAME")
	if err != nil {
		return nil, err
	}

	rabbitHost, err := requireEnv("RABBITMQ_HOST")
	if err != nil {
		return nil, err
	}
	rabbitPortStr, err := requireEnv("RABBITMQ_PORT")
	if err != nil {
		return nil, err
	}
	rabbitPort, err := strconv.ParseInt(rabbitPortStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("RABBITMQ_PORT must be a valid integer: %w", err)
	}
	rabbitUser, err := requireEnv("RABBITMQ_USER")
	if err != nil {
		return nil, err
	}
	rabbitPass, err := requireEnv("RABBITMQ_PASS")
	if err != nil {
		return nil, err
	}

	realtimeURL, err := requireEnv("REALTIME_API_URL")
	if err != nil {
		return nil, err
	}
	realtimeKey, err := requireEnv("REALTIME_API_KEY")
	if err != nil {
		return nil, err
	}

	mediaGatewayURL, err := requireEnv("MEDIA_GATEWAY_URL")
	if err != nil {
		return nil, err
	}
	authServiceURL, err := requireEnv("AUTH_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	sessionTokenTTL, err := optionalSeconds("SESSION_TOKEN_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	approvalTTL, err := optionalSeconds("APPROVAL_TTL_SECONDS", 120)
	if err != nil {
		return nil, err
	}

	return &GlobalConfig{
		host:     host,
		port:     port,
		logLevel: logLevel,
		database: DatabaseConfig{
			host:     dbHost,
			port:     dbPort,
			user:     dbUser,
			password: dbPass,
			dbName:   dbName,
		},
		rabbitHost:      rabbitHost,
		rabbitPort:      int32(rabbitPort),
		rabbitUser:      rabbitUser,
		rabbitPass:      rabbitPass,
		realtimeAPIURL:  realtimeURL,
		realtimeAPIKey:  realtimeKey,
		mediaGatewayURL: mediaGatewayURL,
		authServiceURL:  authServiceURL,
		sessionTokenTTL: sessionTokenTTL,
		approvalTTL:     approvalTTL,
	}, nil
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", name)
	}
	return value, nil
}

func optionalSeconds(name string, defaultSeconds int) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		return time.Duration(defaultSeconds) * time.Second, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return time.Duration(seconds) * time.Second, nil
}

func (c *GlobalConfig) GetHost() string                   { return c.host }
func (c *GlobalConfig) GetPort() string                   { return c.port }
func (c *GlobalConfig) GetLogLevel() string               { return c.logLevel }
func (c *GlobalConfig) GetDatabaseConfig() DatabaseConfig { return c.database }
func (c *GlobalConfig) GetRealtimeAPIURL() string         { return c.realtimeAPIURL }
func (c *GlobalConfig) GetRealtimeAPIKey() string         { return c.realtimeAPIKey }
func (c *GlobalConfig) GetMediaGatewayURL() string        { return c.mediaGatewayURL }
func (c *GlobalConfig) GetAuthServiceURL() string         { return c.authServiceURL }
func (c *GlobalConfig) GetSessionTokenTTL() time.Duration { return c.sessionTokenTTL }
func (c *GlobalConfig) GetApprovalTTL() time.Duration     { return c.approvalTTL }

// GetAMQPURL builds the RabbitMQ connection string
func (c *GlobalConfig) GetAMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.rabbitUser, c.rabbitPass, c.rabbitHost, c.rabbitPort)
}
