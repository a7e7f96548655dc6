package redis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no host", Config{}, ""},
		{"default port", Config{Host: "cache"}, "cache:6379"},
		{"explicit port", Config{Host: "cache", Port: "6380"}, "cache:6380"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis.local")
	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadConfig()

	assert.Equal(t, "redis.local", cfg.Host)
	assert.Equal(t, "6390", cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 2, cfg.DB)
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(Config{})

	assert.Nil(t, rdb)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
