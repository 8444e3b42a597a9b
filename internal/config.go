package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	LogLevel string `env:"LOG_LEVEL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,required=true"`

	MonitorInterval time.Duration `env:"MONITOR_INTERVAL,required=true"`
	GCInterval      time.Duration `env:"GC_INTERVAL,required=true"`

	// Moderation is optional: no word list, no censoring.
	CensoredWords   *string `env:"CENSORED_WORDS"`
	CharReplacement string  `env:"CHARACTER_REPLACEMENT"`
}

// WordList splits the configured comma-separated censored words. Nil when
// moderation is disabled.
func (c Config) WordList() []string {
	if c.CensoredWords == nil || strings.TrimSpace(*c.CensoredWords) == "" {
		return nil
	}
	parts := strings.Split(*c.CensoredWords, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// ReplacementRune validates that CHARACTER_REPLACEMENT is a single rune,
// defaulting to '*' when unset.
func (c Config) ReplacementRune() (rune, error) {
	if c.CharReplacement == "" {
		return '*', nil
	}
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf("CHARACTER_REPLACEMENT must be a single character, got %q", c.CharReplacement)
	}
	return r[0], nil
}
