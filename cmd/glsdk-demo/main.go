// Command glsdk-demo runs a short telemetry session against a backend configured through
// GLSDK_* environment variables. Set GLSDK_LOCAL_LOGGING=true to run without a backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/glasslab/go-glsdk/glsdk/client"
	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/dispatch"
	"github.com/glasslab/go-glsdk/glsdk/util/logger"
)

type demoConfig struct {
	Username  string `env:"DEMO_USERNAME"`
	Password  string `env:"DEMO_PASSWORD"`
	Events    int    `env:"DEMO_EVENTS" envDefault:"3"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
}

func wait(name string, result <-chan dispatch.Result) error {
	select {
	case r := <-result:
		if r.Err != nil {
			return fmt.Errorf("%s: %w", name, r.Err)
		}
		return nil
	case <-time.After(30 * time.Second):
		return fmt.Errorf("%s: timed out", name)
	}
}

func run(demo demoConfig, cfg *conf.SdkConfig) error {
	sdk, err := client.NewClient(cfg)
	if err != nil {
		return err
	}
	defer sdk.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if !cfg.Options.LocalLogging {
		if _, err := sdk.Connect(ctx, cfg.Options.GameID, cfg.Options.URI); err != nil {
			return err
		}
		if _, err := sdk.GetConfig(ctx); err != nil {
			cfg.Logger.Warning("Could not fetch the game config, keeping defaults: ", err.Error())
		}
	}

	if demo.Username != "" {
		if _, err := sdk.Login(ctx, demo.Username, demo.Password); err != nil {
			return err
		}
		if _, err := sdk.GetPlayerInfo(ctx); err != nil {
			return err
		}
	}

	start := sdk.StartSession()
	results := make([]<-chan dispatch.Result, 0, demo.Events)
	for i := 0; i < demo.Events; i++ {
		results = append(results, sdk.SaveTelemEvent("Demo_event", map[string]interface{}{"index": i}))
	}
	end := sdk.EndSessionAndFlush()

	if err := wait("startSession", start); err != nil {
		return err
	}
	for i, result := range results {
		if err := wait(fmt.Sprintf("event %d", i), result); err != nil {
			return err
		}
	}
	if err := wait("endSession", end); err != nil {
		return err
	}

	if cfg.Options.LocalLogging {
		logs, err := sdk.LocalLogs()
		if err != nil {
			return err
		}
		fmt.Print(logs)
	}
	return nil
}

func main() {
	var demo demoConfig
	if err := env.Parse(&demo); err != nil {
		panic(err)
	}

	cfg, err := conf.FromEnv()
	if err != nil {
		panic(err)
	}
	cfg.Logger = logger.NewFromOptions(logger.Options{Level: demo.LogLevel, Pretty: demo.LogPretty})

	if err := run(demo, cfg); err != nil {
		cfg.Logger.Error(err.Error())
		os.Exit(1)
	}
}
