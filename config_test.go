package drupier_test

import (
	"errors"
	"testing"

	"github.com/tothom/drupier-demo"
)

func TestConfigValidateUnknownStorageDriver(t *testing.T) {
	cfg := drupier.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, drupier.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidateRedisRequiresAddr(t *testing.T) {
	cfg := drupier.DefaultConfig()
	cfg.Cache.Driver = "redis"
	if err := cfg.Validate(); !errors.Is(err, drupier.ErrCacheRedisAddrRequired) {
		t.Fatalf("expected ErrCacheRedisAddrRequired, got %v", err)
	}
}

func TestConfigValidateServeRequiresAddr(t *testing.T) {
	cfg := drupier.DefaultConfig()
	cfg.HTTP.Addr = " "
	if err := cfg.ValidateServe(); !errors.Is(err, drupier.ErrHTTPAddrRequired) {
		t.Fatalf("expected ErrHTTPAddrRequired, got %v", err)
	}
}
