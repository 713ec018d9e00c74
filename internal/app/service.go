package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"yashubustudio/evtrisk/riskmodel"
)

// Service holds the process-wide pieces: deploy config, encoding manifest and
// the lazily loaded model. Operator state lives in Session.
type Service struct {
	cfg       riskmodel.Config
	manifest  *riskmodel.Manifest
	model     *riskmodel.ModelHandle
	evaluator *riskmodel.Evaluator
	logger    *slog.Logger
}

func NewService(cfg riskmodel.Config, manifest *riskmodel.Manifest, model *riskmodel.ModelHandle, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		manifest:  manifest,
		model:     model,
		evaluator: riskmodel.NewEvaluator(model, manifest, logger),
		logger:    logger,
	}
}

func (s *Service) Close() error {
	return s.model.Close()
}

// NewSession starts an operator session with default inputs.
func (s *Service) NewSession() *Session {
	return newSession(riskmodel.NewForm(s.manifest), s.evaluator)
}

// ModelStatus loads the model if needed and describes the result for the
// status line.
func (s *Service) ModelStatus() (string, error) {
	clf, err := s.model.Classifier()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Sprintf("Model file not found. Please check the path: %s", s.cfg.Classifier.ModelPath), err
		}
		return fmt.Sprintf("%s (%v)", riskmodel.MessageModelUnavailable, err), err
	}
	return fmt.Sprintf("Model: %s / Manifest: %s / Threshold: %.2f",
		clf.ModelID(), s.manifest.Version, s.evaluator.Threshold()), nil
}
