package app

import (
	"io"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/data/binding"

	"yashubustudio/evtrisk/ortmodel"
	"yashubustudio/evtrisk/riskmodel"
)

const (
	fyneAppID    = "yashubustudio.evtrisk"
	logLineLimit = 500
)

// Run loads configuration, manifest and model, then starts the desktop UI.
func Run() error {
	cfg, err := riskmodel.LoadConfig("")
	if err != nil {
		return err
	}

	logBind := binding.NewString()
	capture := newLogCapture(logBind, logLineLimit)
	logger := newLogger(cfg.LogLevel, io.MultiWriter(os.Stdout, capture))
	slog.SetDefault(logger)

	manifest, err := riskmodel.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return err
	}
	logger.Info("encoding manifest loaded",
		slog.String("manifest_version", manifest.Version),
		slog.Float64("threshold", manifest.Threshold))

	model := riskmodel.NewModelHandle(ortmodel.Loader(cfg.Classifier, manifest, logger))
	svc := NewService(cfg, manifest, model, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("closing model", slog.Any("error", err))
		}
	}()

	if _, err := svc.ModelStatus(); err != nil {
		logger.Error("model not loaded", slog.Any("error", err))
	}

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, logBind)
	u.w.ShowAndRun()
	return nil
}
