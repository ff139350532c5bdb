package telegram

type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT"`
}
