package ortmodel

import (
	"log/slog"

	"yashubustudio/evtrisk/riskmodel"
)

// Loader returns a riskmodel.ModelLoader that checks the artifact against the
// manifest checksum before opening it.
func Loader(cfg riskmodel.ClassifierConfig, manifest *riskmodel.Manifest, logger *slog.Logger) riskmodel.ModelLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return func() (riskmodel.Classifier, error) {
		if manifest.ModelSHA256 == "" {
			logger.Warn("manifest does not pin a model checksum",
				slog.String("manifest_version", manifest.Version),
				slog.String("model_path", cfg.ModelPath))
		}
		if err := riskmodel.VerifyArtifact(cfg.ModelPath, manifest.ModelSHA256); err != nil {
			return nil, err
		}
		clf, err := Open(FromClassifierConfig(cfg))
		if err != nil {
			return nil, err
		}
		logger.Info("model loaded",
			slog.String("model_id", clf.ModelID()),
			slog.String("model_path", cfg.ModelPath),
			slog.String("manifest_version", manifest.Version))
		return clf, nil
	}
}
