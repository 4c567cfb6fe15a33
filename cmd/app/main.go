package main

import (
	"os"

	"github.com/rautpranav13/IBMaarogyam/internal/app"
	config "github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

//	@title			Aarogyam insight API
//	@version		1.0
//	@description	Prescription image insights and drug schedule extraction backed by a multimodal LLM.
//	@BasePath		/
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
