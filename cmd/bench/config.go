package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/IvanBrykalov/sitememo/store/expiring"
)

// backends lists the accepted -backend values.
var backends = []string{"map", "tree", "bounded-lru", "bounded-2q", "expiring", "tinylfu"}

var errUnsupportedFormat = errors.New("bench: config file must be .yaml, .yml or .json")

// config holds every bench setting. Flags set the defaults, a -config file
// overrides them, and flags given explicitly on the command line win over
// the file.
type config struct {
	Backend  string        `koanf:"backend"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
	Once     bool          `koanf:"once"`

	Workers  int           `koanf:"workers"`
	Duration time.Duration `koanf:"duration"`
	Keys     int           `koanf:"keys"`
	ZipfS    float64       `koanf:"zipf_s"`
	ZipfV    float64       `koanf:"zipf_v"`
	Seed     int64         `koanf:"seed"`

	PprofAddr   string `koanf:"pprof"`
	MetricsAddr string `koanf:"http"`
	Debug       bool   `koanf:"debug"`
}

func parseConfig(args []string) (config, error) {
	var (
		cfg  config
		path string
	)
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "YAML or JSON file with settings; explicit flags take precedence")

	fs.StringVar(&cfg.Backend, "backend", "map", "store backend: "+strings.Join(backends, " | "))
	fs.IntVar(&cfg.Capacity, "cap", 100_000, "capacity for bounded, expiring and tinylfu backends")
	fs.DurationVar(&cfg.TTL, "ttl", time.Second, "entry TTL for the expiring backend")
	fs.BoolVar(&cfg.Once, "once", false, "coalesce concurrent misses per key (map backend only)")

	fs.IntVar(&cfg.Workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	fs.DurationVar(&cfg.Duration, "duration", 10*time.Second, "benchmark duration")
	fs.IntVar(&cfg.Keys, "keys", 1_000_000, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", 1.0, "Zipf v >= 1")
	fs.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed")

	fs.StringVar(&cfg.PprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&cfg.MetricsAddr, "http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	fs.BoolVar(&cfg.Debug, "debug", false, "development logger at debug level")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if path != "" {
		explicit := make(map[string]string)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

		if err := loadFile(path, &cfg); err != nil {
			return config{}, err
		}
		for name, v := range explicit {
			if err := fs.Set(name, v); err != nil {
				return config{}, err
			}
		}
	}
	return cfg, cfg.validate()
}

// loadFile overlays the keys present in the file at path onto cfg.
func loadFile(path string, cfg *config) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bench: read config: %w", err)
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("bench: parse %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("bench: decode %s: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	known := false
	for _, b := range backends {
		known = known || b == c.Backend
	}
	switch {
	case !known:
		return fmt.Errorf("bench: unknown backend %q (use %s)", c.Backend, strings.Join(backends, ", "))
	case c.Once && c.Backend != "map":
		return fmt.Errorf("bench: -once needs the map backend, got %q", c.Backend)
	case c.Capacity <= 0:
		return fmt.Errorf("bench: capacity must be positive, got %d", c.Capacity)
	case c.Keys < 1:
		return fmt.Errorf("bench: keys must be positive, got %d", c.Keys)
	case c.ZipfS <= 1 || c.ZipfV < 1:
		return fmt.Errorf("bench: need zipf_s > 1 and zipf_v >= 1, got %v and %v", c.ZipfS, c.ZipfV)
	case c.Duration <= 0:
		return fmt.Errorf("bench: duration must be positive, got %v", c.Duration)
	}
	if c.Backend == "expiring" {
		if err := (expiring.Config{Size: c.Capacity, TTL: c.TTL}).Validate(); err != nil {
			return fmt.Errorf("bench: %w", err)
		}
	}
	return nil
}
