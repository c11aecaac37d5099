package main

import (
	"fmt"
	"log"

	corecmd "github.com/m3rciful/folio/core/cmd"
	"github.com/m3rciful/folio/portfolio"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return portfolio.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*portfolio.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return portfolio.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("folio: %v", err)
	}
}
