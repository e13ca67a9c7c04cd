package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/pipeline"
)

// Cache backends accepted in [cache].backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the on-disk configuration. Command-line flags override it.
//
//	[kernel]
//	d33 = 1.0
//	d44 = 0.04
//	t = 1.0
//	orientations = 0   # 0 selects the built-in 100-point set
//	seed = 0
//	test_mode = false
//	workers = 0        # 0 uses GOMAXPROCS
//
//	[cache]
//	backend = "file"   # file, redis or none
//	dir = ""           # default ~/.cache/sekernel
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	namespace = ""
//	ttl = "720h"
type Config struct {
	Kernel KernelConfig `toml:"kernel"`
	Cache  CacheConfig  `toml:"cache"`
}

// KernelConfig holds the [kernel] section.
type KernelConfig struct {
	D33          float64 `toml:"d33"`
	D44          float64 `toml:"d44"`
	T            float64 `toml:"t"`
	Orientations int     `toml:"orientations"`
	Seed         uint64  `toml:"seed"`
	TestMode     bool    `toml:"test_mode"`
	Workers      int     `toml:"workers"`
}

// CacheConfig holds the [cache] section.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	Namespace string        `toml:"namespace"`
	TTL       time.Duration `toml:"ttl"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	p := kernel.DefaultParams()
	return Config{
		Kernel: KernelConfig{D33: p.D33, D44: p.D44, T: p.T},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadConfig decodes path over DefaultConfig. A missing file is an error
// only when required is set. Unknown keys are rejected.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values a file can get wrong before any kernel work.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return c.Kernel.Params().Validate()
}

// Params returns the diffusion parameters.
func (k KernelConfig) Params() kernel.Params {
	return kernel.Params{D33: k.D33, D44: k.D44, T: k.T}
}

// options converts the kernel section into pipeline options.
func (c Config) options() pipeline.Options {
	return pipeline.Options{
		Params:       c.Kernel.Params(),
		Orientations: c.Kernel.Orientations,
		Seed:         c.Kernel.Seed,
		TestMode:     c.Kernel.TestMode,
		Workers:      c.Kernel.Workers,
		TTL:          c.Cache.TTL,
	}
}
