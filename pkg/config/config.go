package config

import (
	"fmt"
	"strings"

	"purchase-analytics/pkg/logger"

	"github.com/spf13/viper"
)

// EnvPrefix des variables d'environnement (PURCHASE_ANALYTICS_LOG_LEVEL, ...).
const EnvPrefix = "PURCHASE_ANALYTICS"

// Config regroupe les réglages hors arguments positionnels.
type Config struct {
	Log      logger.Config
	Progress bool
	Store    StoreConfig
}

// StoreConfig : copie optionnelle du rapport en base.
type StoreConfig struct {
	DSN   string
	Table string
}

// NewViper prépare viper : défauts, fichier purchase-analytics.yaml optionnel,
// variables d'environnement.
// Priorité : flags > env > fichier > défauts.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("progress", false)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", "department_report")

	v.SetConfigName("purchase-analytics")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load lit le fichier de config (absent = OK) puis construit Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("lecture fichier de config : %w", err)
		}
	}

	cfg := &Config{
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Progress: v.GetBool("progress"),
		Store: StoreConfig{
			DSN:   v.GetString("store.dsn"),
			Table: v.GetString("store.table"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format invalide : %q (console|json)", c.Log.Format)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store.table vide")
	}
	return nil
}
