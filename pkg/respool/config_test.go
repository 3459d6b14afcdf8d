package respool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/respool/pkg/poolerrors"
)

func noopFactory() Factory {
	return Factory{
		Create:   func(ctx context.Context) (any, error) { return new(int), nil },
		Destroy:  func(handle any) {},
		Validate: func(handle any) bool { return true },
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"negative min", func(c *Config) { c.Min = -1 }, true},
		{"zero max", func(c *Config) { c.Max = 0 }, true},
		{"min greater than max", func(c *Config) { c.Min = 5; c.Max = 2 }, true},
		{"zero idle timeout", func(c *Config) { c.IdleTimeout = 0 }, true},
		{"zero reap interval", func(c *Config) { c.ReapInterval = 0 }, true},
		{"negative acquire timeout", func(c *Config) { c.AcquireTimeout = -time.Second }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig("t", noopFactory())
			cfg.Max = 4
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, poolerrors.IsKind(err, poolerrors.KindConfig))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFactory_Validate_MutualExclusion(t *testing.T) {
	f := noopFactory()
	f.ValidateAsync = func(handle any, done func(valid bool)) { done(true) }
	cfg := NewConfig("t", f)
	cfg.Max = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, poolerrors.IsKind(err, poolerrors.KindConfig))
}

func TestFactory_Validate_RequiresOneValidator(t *testing.T) {
	f := noopFactory()
	f.Validate = nil
	cfg := NewConfig("t", f)
	cfg.Max = 2
	require.Error(t, cfg.Validate())
}
