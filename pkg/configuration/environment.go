package configuration

import (
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first call.
func Use() *Configuration {
	return singleton()
}

func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DatabaseOptions struct {
	Name     string `env:"DB_NAME" envDefault:"bankcrm"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type LifecycleOptions struct {
	// StrictStages rejects non-adjacent customer/opportunity stage
	// transitions instead of allowing free movement between stages.
	StrictStages  bool   `env:"LIFECYCLE_STRICT_STAGES" envDefault:"false"`
	SweepEnabled  bool   `env:"TASK_SWEEP_ENABLED" envDefault:"true"`
	SweepSchedule string `env:"TASK_SWEEP_SCHEDULE" envDefault:"@every 5m"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RBACOptions struct {
	ModelPath  string `env:"RBAC_MODEL_PATH" envDefault:"config/access/model.conf"`
	PolicyPath string `env:"RBAC_POLICY_PATH" envDefault:"config/access/policy.csv"`
}

type AuditOptions struct {
	Enabled bool `env:"AUDIT_LOG_ENABLED" envDefault:"true"`
}

type Configuration struct {
	Database   DatabaseOptions
	Lifecycle  LifecycleOptions
	Prometheus PrometheusOptions
	RBAC       RBACOptions
	Audit      AuditOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"SOCKET_ADDRESS" envDefault:":8080"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	RealIPHeader     string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	RequestIDHeader  string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-Id"`

	logger *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.GoAppEnvironment == Production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	c.logger = logger
	return nil
}
