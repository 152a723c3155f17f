package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Env lists the environment variables the service reads.
type Env struct {
	Port                 string        `env:"PORT" env-default:"8080"`
	TwilioAccountSID     string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string        `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioCallNumber     string        `env:"TWILIO_CALL_NUMBER"`
	OpenAIAPIKey         string        `env:"OPENAI_API_KEY"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	SQLitePath           string        `env:"SQLITE_PATH" env-default:"reminders.db"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	TimezoneName         string        `env:"USER_TIMEZONE" env-default:"Asia/Kolkata"`
	SweepSchedule        string        `env:"SWEEP_SCHEDULE" env-default:"@every 1m"`
	EscalationWait       time.Duration `env:"ESCALATION_WAIT" env-default:"5m"`
	SessionTTL           time.Duration `env:"SESSION_TTL" env-default:"10m"`
	CallWindowStart      int           `env:"CALL_WINDOW_START" env-default:"7"`
	CallWindowEnd        int           `env:"CALL_WINDOW_END" env-default:"21"`
}

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Env
	LocalTimezone *time.Location
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()

	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		log.Printf("config: reading environment: %v", err)
	}
	return FromEnv(env)
}

// FromEnv resolves derived settings such as the timezone.
func FromEnv(env Env) *Config {
	location, err := time.LoadLocation(env.TimezoneName)
	if err != nil {
		log.Printf("config: invalid USER_TIMEZONE %q, defaulting to system local: %v", env.TimezoneName, err)
		location = time.Local
	}

	if env.CallWindowStart < 0 || env.CallWindowEnd > 24 || env.CallWindowStart >= env.CallWindowEnd {
		log.Printf("config: invalid call window [%d, %d), using [7, 21)", env.CallWindowStart, env.CallWindowEnd)
		env.CallWindowStart, env.CallWindowEnd = 7, 21
	}

	return &Config{
		Env:           env,
		LocalTimezone: location,
	}
}
