package main

import "github.com/caarlos0/env/v11"

type serverConfig struct {
	HTTPAddr   string            `env:"HTTP_ADDR" envDefault:":8001"`
	Users      map[string]string `env:"BACKEND_USERS" envKeyValSeparator:":" envDefault:"player:player"`
	GameSecret string            `env:"BACKEND_GAME_SECRET"`
	LogLevel   string            `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty  bool              `env:"LOG_PRETTY" envDefault:"false"`
}

func loadConfig() (serverConfig, error) {
	var cfg serverConfig
	err := env.Parse(&cfg)
	return cfg, err
}
