package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"caisse/internal/notify"

	"github.com/spf13/viper"
)

// Workflow holds the tuning of background work and the notification routes.
type Workflow struct {
	Sync struct {
		Debounce    time.Duration `mapstructure:"debounce"`
		Attempts    int           `mapstructure:"attempts"`
		BackoffBase time.Duration `mapstructure:"backoff_base"`
	} `mapstructure:"sync"`
	Outbox struct {
		Interval    time.Duration `mapstructure:"interval"`
		BatchSize   int           `mapstructure:"batch_size"`
		MaxAttempts int           `mapstructure:"max_attempts"`
		RetryBase   time.Duration `mapstructure:"retry_base"`
	} `mapstructure:"outbox"`
	ExternalTimeout time.Duration `mapstructure:"external_timeout"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	Channels        struct {
		Operator string `mapstructure:"operator"`
		Finance  string `mapstructure:"finance"`
	} `mapstructure:"channels"`
	Routes []notify.Route `mapstructure:"routes"`
}

func setWorkflowDefaults(v *viper.Viper) {
	v.SetDefault("sync.debounce", 30*time.Second)
	v.SetDefault("sync.attempts", 3)
	v.SetDefault("sync.backoff_base", 200*time.Millisecond)
	v.SetDefault("outbox.interval", 2*time.Second)
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.max_attempts", 10)
	v.SetDefault("outbox.retry_base", time.Second)
	v.SetDefault("external_timeout", 5*time.Second)
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("channels.operator", "ops")
	v.SetDefault("channels.finance", "finance")
}

// LoadWorkflow reads the workflow file. A missing file yields the defaults.
func LoadWorkflow(path string) (*Workflow, error) {
	v := viper.New()
	setWorkflowDefaults(v)
	v.SetEnvPrefix("CAISSE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read workflow config: %w", err)
			}
		}
	}

	wf := &Workflow{}
	if err := v.Unmarshal(wf); err != nil {
		return nil, fmt.Errorf("decode workflow config: %w", err)
	}
	if len(wf.Routes) == 0 {
		wf.Routes = notify.DefaultRoutes(wf.Channels.Finance)
	}
	return wf, nil
}
