package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	JWTSecret       string        `env:"JWT_SECRET"` // empty means fail-closed at connect time
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=64"`
	StoreURL        string        `env:"STORE_URL,default=http://localhost:8081"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT,default=3s"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
