package yookassa

type Config struct {
	BaseURL   string `envconfig:"BASE_URL" default:"https://api.yookassa.ru/v3"`
	ShopID    string `envconfig:"SHOP_ID"`
	SecretKey string `envconfig:"SECRET_KEY"`
	ReturnURL string `envconfig:"RETURN_URL"` // куда вернуть пользователя после оплаты
}

// IsConfigured карточный рейл опционален: без ключей бот работает только на Stars
func (c *Config) IsConfigured() bool {
	return c.ShopID != "" && c.SecretKey != ""
}
