package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mcstatusbot/internal/presence"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	DEFAULT_STATUS_INTERVAL = 30 * time.Second
	DEFAULT_STATS_INTERVAL  = 10 * time.Second
	DEFAULT_CACHE_TTL       = 30 * time.Second
	DEFAULT_TIMEOUT         = 5 * time.Second
	DEFAULT_AUTO_OFFLINE    = true

	BACKEND_FILE  = "file"
	BACKEND_REDIS = "redis"
)

// Values read straight from the environment.
// Lenient values are kept as text and checked afterwards, so that
// a typo falls back to the default instead of stopping the bot
type environment struct {
	DiscordToken   string `envconfig:"DISCORD_TOKEN" required:"true"`
	ServerIp       string `envconfig:"SERVER_IP" default:"play.example.com"`
	BedrockIp      string `envconfig:"BEDROCK_IP" default:"bedrock.example.com"`
	ServerName     string `envconfig:"SERVER_NAME" default:"Minecraft"`
	SubServers     string `envconfig:"SUB_SERVERS"`
	StatusInterval string `envconfig:"STATUS_UPDATE_INTERVAL"`
	StatsInterval  string `envconfig:"STATS_UPDATE_INTERVAL"`
	AutoOffline    string `envconfig:"ZERO_PLAYER_AUTO_OFFLINE"`
	StatusApiUrl   string `envconfig:"STATUS_API_URL" default:"https://api.mcstatus.io/v2/status/java/%s"`
	CacheTTL       string `envconfig:"STATUS_CACHE_TTL"`
	Timeout        string `envconfig:"STATUS_TIMEOUT"`
	Backend        string `envconfig:"REGISTRY_BACKEND" default:"file"`
	RegistryFile   string `envconfig:"REGISTRY_FILE" default:"data/stats-channels.json"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKey       string `envconfig:"REDIS_KEY" default:"mcstatusbot:stats-channels"`
	CommandGuildId string `envconfig:"COMMAND_GUILD_ID"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
}

type Config struct {
	DiscordToken   string
	ServerIp       string
	BedrockIp      string
	ServerName     string
	SubServers     []presence.SubServer
	StatusInterval time.Duration
	StatsInterval  time.Duration
	AutoOffline    bool
	StatusApiUrl   string
	CacheTTL       time.Duration
	Timeout        time.Duration
	Registry       RegistryConfig
	CommandGuildId string
	LogLevel       string
	LogPretty      bool
}

type RegistryConfig struct {
	Backend       string
	File          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Load the configuration from the environment, after loading
// the .env file at path if there is one.
// Only a missing token or an unusable required value is an error
func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Debug().Msg(fmt.Sprintf("No .env file loaded from %s", path))
	}

	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if strings.TrimSpace(env.DiscordToken) == "" {
		return Config{}, fmt.Errorf("config.Load: DISCORD_TOKEN is required")
	}

	backend := strings.ToLower(strings.TrimSpace(env.Backend))
	if backend != BACKEND_FILE && backend != BACKEND_REDIS {
		log.Warn().Msg(fmt.Sprintf("REGISTRY_BACKEND %q not understood, using %s", env.Backend, BACKEND_FILE))
		backend = BACKEND_FILE
	}

	statusApiUrl := env.StatusApiUrl
	if strings.Count(statusApiUrl, "%s") != 1 {
		log.Warn().Msg(fmt.Sprintf("STATUS_API_URL %q must contain exactly one %%s, using the default", statusApiUrl))
		statusApiUrl = "https://api.mcstatus.io/v2/status/java/%s"
	}

	return Config{
		DiscordToken:   env.DiscordToken,
		ServerIp:       env.ServerIp,
		BedrockIp:      env.BedrockIp,
		ServerName:     env.ServerName,
		SubServers:     ParseSubServers(env.SubServers),
		StatusInterval: parseMillis("STATUS_UPDATE_INTERVAL", env.StatusInterval, DEFAULT_STATUS_INTERVAL, time.Second),
		StatsInterval:  parseMillis("STATS_UPDATE_INTERVAL", env.StatsInterval, DEFAULT_STATS_INTERVAL, time.Second),
		AutoOffline:    parseBool("ZERO_PLAYER_AUTO_OFFLINE", env.AutoOffline, DEFAULT_AUTO_OFFLINE),
		StatusApiUrl:   statusApiUrl,
		CacheTTL:       parseMillis("STATUS_CACHE_TTL", env.CacheTTL, DEFAULT_CACHE_TTL, time.Millisecond),
		Timeout:        parseMillis("STATUS_TIMEOUT", env.Timeout, DEFAULT_TIMEOUT, time.Millisecond),
		Registry: RegistryConfig{
			Backend:       backend,
			File:          env.RegistryFile,
			RedisAddr:     env.RedisAddr,
			RedisPassword: env.RedisPassword,
			RedisDB:       env.RedisDB,
			RedisKey:      env.RedisKey,
		},
		CommandGuildId: env.CommandGuildId,
		LogLevel:       env.LogLevel,
		LogPretty:      env.LogPretty,
	}, nil
}

// Parse "name:emoji,name:emoji".
// Any malformed entry makes the whole list fall back to the default
func ParseSubServers(value string) []presence.SubServer {
	if strings.TrimSpace(value) == "" {
		log.Warn().Msg("SUB_SERVERS not set, using defaults")
		return presence.DefaultSubServers()
	}

	var servers []presence.SubServer
	for _, entry := range strings.Split(value, ",") {
		name, emoji, found := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		emoji = strings.TrimSpace(emoji)
		if !found || name == "" || emoji == "" {
			log.Warn().Msg(fmt.Sprintf("Invalid sub-server %q in SUB_SERVERS, using defaults", entry))
			return presence.DefaultSubServers()
		}
		servers = append(servers, presence.SubServer{Name: name, Emoji: emoji})
	}

	names := make([]string, len(servers))
	for i := range servers {
		names[i] = servers[i].Name
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d sub-servers: %s", len(servers), strings.Join(names, ", ")))
	return servers
}

// Parse a number of milliseconds no smaller than min
func parseMillis(name string, value string, def time.Duration, min time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	millis, err := strconv.Atoi(strings.TrimSpace(value))
	duration := time.Duration(millis) * time.Millisecond
	if err != nil || duration < min {
		log.Warn().Msg(fmt.Sprintf("%s %q is not a number of milliseconds of at least %s, using %s", name, value, min, def))
		return def
	}
	return duration
}

func parseBool(name string, value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("%s %q is not a boolean, using %t", name, value, def))
		return def
	}
	return parsed
}
