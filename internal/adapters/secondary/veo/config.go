package veo

type Config struct {
	BaseURL string `envconfig:"BASE_URL" default:"https://api.kie.ai"`
	ApiKey  string `envconfig:"API_KEY"`
	Model   string `envconfig:"MODEL" default:"veo3_fast"`
}
