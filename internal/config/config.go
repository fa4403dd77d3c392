package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"roevhul/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. ROEVHUL_BOT_SEATS.
const EnvPrefix = "ROEVHUL"

var ErrInvalidConfig = errors.New("invalid game config")

type GameConfig struct {
	HumanSeats int `mapstructure:"human_seats"`
	BotSeats   int `mapstructure:"bot_seats"`
	Jokers     int `mapstructure:"jokers"`
	// MagnitudeOrder maps rank codes (3..9, T or 10, J, Q, K, A, 2) to magnitudes.
	// Empty means the default order.
	MagnitudeOrder map[string]int `mapstructure:"magnitude_order"`
	BotLevel       string         `mapstructure:"bot_level"`

	BotMinDelaySeconds float64 `mapstructure:"bot_min_delay_seconds"`
	BotMaxDelaySeconds float64 `mapstructure:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `mapstructure:"bot_auto_fill_delay_seconds"`
	// TurnTimeoutSeconds plays for an idle player after this long. Zero disables it.
	TurnTimeoutSeconds int `mapstructure:"turn_timeout_seconds"`

	RedisAddr    string `mapstructure:"redis_addr"`
	TicketSecret string `mapstructure:"ticket_secret"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Defaults returns the configuration used when nothing is set.
func Defaults() GameConfig {
	return GameConfig{
		HumanSeats:              4,
		BotSeats:                0,
		Jokers:                  domain.DefaultJokers,
		BotLevel:                "easy",
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 10,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("human_seats", d.HumanSeats)
	v.SetDefault("bot_seats", d.BotSeats)
	v.SetDefault("jokers", d.Jokers)
	v.SetDefault("magnitude_order", map[string]int{})
	v.SetDefault("bot_level", d.BotLevel)
	v.SetDefault("bot_min_delay_seconds", d.BotMinDelaySeconds)
	v.SetDefault("bot_max_delay_seconds", d.BotMaxDelaySeconds)
	v.SetDefault("bot_auto_fill_delay_seconds", d.BotAutoFillDelaySeconds)
	v.SetDefault("turn_timeout_seconds", d.TurnTimeoutSeconds)
	v.SetDefault("redis_addr", "")
	v.SetDefault("ticket_secret", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from path (YAML, JSON or TOML by extension) and the environment.
// An empty path reads defaults and the environment only.
func Load(path string) (*GameConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromMap builds a configuration from loosely typed values such as the Nakama runtime env.
// Unknown keys are ignored and missing keys keep their defaults.
func FromMap(values map[string]string, prefix string) (*GameConfig, error) {
	return Overlay(Defaults(), values, prefix)
}

// Overlay applies the prefixed values on top of base and validates the result.
func Overlay(base GameConfig, values map[string]string, prefix string) (*GameConfig, error) {
	c := base
	get := func(key string) (string, bool) {
		val, ok := values[prefix+key]
		return val, ok && val != ""
	}

	var err error
	setInt := func(key string, dst *int) {
		if raw, ok := get(key); ok && err == nil {
			*dst, err = cast.ToIntE(raw)
			if err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if raw, ok := get(key); ok && err == nil {
			*dst, err = cast.ToFloat64E(raw)
			if err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
		}
	}

	setInt("human_seats", &c.HumanSeats)
	setInt("bot_seats", &c.BotSeats)
	setInt("jokers", &c.Jokers)
	setFloat("bot_min_delay_seconds", &c.BotMinDelaySeconds)
	setFloat("bot_max_delay_seconds", &c.BotMaxDelaySeconds)
	setInt("bot_auto_fill_delay_seconds", &c.BotAutoFillDelaySeconds)
	setInt("turn_timeout_seconds", &c.TurnTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	if raw, ok := get("magnitude_order"); ok {
		c.MagnitudeOrder, err = parseMagnitudeOrder(raw)
		if err != nil {
			return nil, err
		}
	}
	if raw, ok := get("bot_level"); ok {
		c.BotLevel = raw
	}
	if raw, ok := get("redis_addr"); ok {
		c.RedisAddr = raw
	}
	if raw, ok := get("ticket_secret"); ok {
		c.TicketSecret = raw
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// parseMagnitudeOrder reads a JSON object ({"3":1,"4":2}) or a pair list (3:1,4:2).
func parseMagnitudeOrder(raw string) (map[string]int, error) {
	raw = strings.TrimSpace(raw)
	var entries map[string]interface{}
	if strings.HasPrefix(raw, "{") {
		m, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: magnitude_order: %v", ErrInvalidConfig, err)
		}
		entries = m
	} else {
		entries = make(map[string]interface{})
		for _, pair := range strings.Split(raw, ",") {
			rank, magnitude, ok := strings.Cut(strings.TrimSpace(pair), ":")
			if !ok {
				return nil, fmt.Errorf("%w: magnitude_order: bad pair %q", ErrInvalidConfig, pair)
			}
			entries[strings.TrimSpace(rank)] = strings.TrimSpace(magnitude)
		}
	}

	order := make(map[string]int, len(entries))
	for rank, v := range entries {
		magnitude, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: magnitude_order: rank %s: %v", ErrInvalidConfig, rank, err)
		}
		order[rank] = magnitude
	}
	return order, nil
}

// Validate reports the first configuration error.
func (c *GameConfig) Validate() error {
	seats := c.HumanSeats + c.BotSeats
	switch {
	case c.HumanSeats < 0 || c.BotSeats < 0:
		return fmt.Errorf("%w: seat counts must not be negative", ErrInvalidConfig)
	case seats < 2:
		return fmt.Errorf("%w: need at least 2 seats, got %d", ErrInvalidConfig, seats)
	case seats > 8:
		return fmt.Errorf("%w: at most 8 seats, got %d", ErrInvalidConfig, seats)
	case c.Jokers < 0:
		return fmt.Errorf("%w: jokers must not be negative", ErrInvalidConfig)
	case c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds:
		return fmt.Errorf("%w: bot delay range [%v, %v]", ErrInvalidConfig, c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	case c.TurnTimeoutSeconds < 0:
		return fmt.Errorf("%w: turn timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Magnitudes(); err != nil {
		return err
	}
	return nil
}

// Magnitudes returns the configured magnitude order, or the default one.
func (c *GameConfig) Magnitudes() (domain.MagnitudeOrder, error) {
	if len(c.MagnitudeOrder) == 0 {
		return domain.DefaultMagnitudeOrder(), nil
	}
	order := make(domain.MagnitudeOrder, len(c.MagnitudeOrder))
	for code, magnitude := range c.MagnitudeOrder {
		rank, err := domain.ParseRank(code)
		if err != nil {
			return nil, fmt.Errorf("%w: magnitude_order: %v", ErrInvalidConfig, err)
		}
		if _, dup := order[rank]; dup {
			return nil, fmt.Errorf("%w: magnitude_order: rank %s listed twice", ErrInvalidConfig, rank)
		}
		order[rank] = magnitude
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: magnitude_order: %w", ErrInvalidConfig, err)
	}
	return order, nil
}

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// SetGameConfig installs an already built configuration, e.g. one read from the runtime env.
func SetGameConfig(c *GameConfig) {
	loadOnce.Do(func() {})
	cfg = c
}

// GetGameConfig returns the global game configuration, or the defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		d := Defaults()
		return &d
	}
	return cfg
}
