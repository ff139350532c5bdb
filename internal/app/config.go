package app

import (
	server "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/telegram"
	veoAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/veo"
	yookassaAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/yookassa"
	"github.com/admin/tg-bots/veo-bot/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Environment админские операции включены только в "production"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	Postgres *pg.Config              `envconfig:"POSTGRES"`
	Log      *logger.Config          `envconfig:"LOG"`
	Server   *server.Config          `envconfig:"APISERVER"`
	Telegram *telegram.Config        `envconfig:"TELEGRAM"`
	Redis    *redisAdapter.Config    `envconfig:"REDIS"`
	Kafka    *kafkaAdapter.Config    `envconfig:"KAFKA"`
	S3       *s3Adapter.Config       `envconfig:"S3"`
	YooKassa *yookassaAdapter.Config `envconfig:"YOOKASSA"`
	Veo      *veoAdapter.Config      `envconfig:"VEO"`
	Alerter  *alerterAdapter.Config  `envconfig:"ALERTER"`

	// AdminID telegram_id пользователя, которому на старте выдаётся роль admin
	AdminID int64 `envconfig:"ADMIN_ID"`
	// PackagesFile путь к JSON-каталогу пакетов, пусто значит встроенный каталог
	PackagesFile string `envconfig:"PACKAGES_FILE"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
