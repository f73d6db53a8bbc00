package render

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"
)

// Storage drivers accepted by NewStorage.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// StorageConfig selects the render cache backend.
type StorageConfig struct {
	Driver    string
	RedisAddr string
	RedisDB   int
}

// NewStorage opens the configured backend. DriverNone returns a nil storage,
// which disables caching in the pipeline.
func NewStorage(cfg StorageConfig) (store fiber.Storage, err error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return memoryStorage.New(), nil
	case DriverNone:
		return nil, nil
	case DriverRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("render: redis cache requires an address")
		}
		// redis storage panics when the server cannot be reached
		defer func() {
			if r := recover(); r != nil {
				store = nil
				err = fmt.Errorf("render: connect redis %s: %v", cfg.RedisAddr, r)
			}
		}()
		return redisStorage.New(redisStorage.Config{
			Addrs:    []string{cfg.RedisAddr},
			Database: cfg.RedisDB,
		}), nil
	default:
		return nil, fmt.Errorf("render: unknown cache driver %q", cfg.Driver)
	}
}
