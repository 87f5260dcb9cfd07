package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/pkelleher/live-poll-backend/internal/poll"
)

type Config struct {
	Port          string   `env:"PORT"            env-default:"3001"`
	LogLevel      string   `env:"LOG_LEVEL"       env-default:"info"`
	CodeLength    int      `env:"ROOM_CODE_LEN"   env-default:"6"`
	PollQuestion  string   `env:"POLL_QUESTION"   env-default:"Which do you prefer?"`
	PollOptions   []string `env:"POLL_OPTIONS"    env-default:"Cats,Dogs"`
	PollTimeLimit int      `env:"POLL_TIME_LIMIT" env-default:"60"` // seconds
}

func New() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultPoll is the pluggable supplier every new room starts from.
func (c *Config) DefaultPoll() *poll.Poll {
	return poll.New(
		c.PollQuestion,
		c.PollOptions,
		time.Duration(c.PollTimeLimit)*time.Second,
		time.Now(),
	)
}
