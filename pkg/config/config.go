// Package config loads typed configuration from environment variables.
//
// A .env file in the working directory is read once before the first parse.
// Each configuration type is parsed once and cached, so packages can call
// Load for their own Config struct without coordinating with each other.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = map[reflect.Type]any{}
)

// Load parses environment variables into a value of type T and caches it.
// Subsequent calls for the same type return the cached copy.
//
// Example:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	cfg, err := config.Load[RedisConfig]()
func Load[T any]() (T, error) {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var zero T
	key := reflect.TypeOf(&zero).Elem()
	if key.Kind() != reflect.Struct {
		return zero, fmt.Errorf("%w: %s", ErrNotStruct, key)
	}

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		return cached.(T), nil
	}

	var v T
	if err := env.Parse(&v); err != nil {
		return zero, errors.Join(ErrParse, err)
	}
	cache[key] = v
	return v, nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any]() T {
	v, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return v
}

// Reset drops every cached value. Intended for tests that change the
// environment between loads.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[reflect.Type]any{}
}
