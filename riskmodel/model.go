package riskmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Classifier is the minimal surface of a trained model required by the evaluator.
type Classifier interface {
	// PredictProba returns the positive-class probability for v.
	PredictProba(ctx context.Context, v FeatureVector) (float64, error)
	ModelID() string
	Close() error
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, v FeatureVector) (float64, error)

func (f ClassifierFunc) PredictProba(ctx context.Context, v FeatureVector) (float64, error) {
	return f(ctx, v)
}

func (f ClassifierFunc) ModelID() string { return "func" }

func (f ClassifierFunc) Close() error { return nil }

// ModelLoader opens the classifier artifact.
type ModelLoader func() (Classifier, error)

// ModelHandle loads the classifier once, on first use, and keeps the result
// for the lifetime of the process. A failed load stays failed.
type ModelHandle struct {
	once   sync.Once
	loader ModelLoader

	mu  sync.Mutex
	clf Classifier
	err error
}

// NewModelHandle constructs a handle around loader. A nil loader produces a
// handle that always reports ErrModelUnavailable.
func NewModelHandle(loader ModelLoader) *ModelHandle {
	return &ModelHandle{loader: loader}
}

// StaticModel wraps an already opened classifier.
func StaticModel(clf Classifier) *ModelHandle {
	return NewModelHandle(func() (Classifier, error) { return clf, nil })
}

// Classifier returns the loaded classifier, loading it on the first call.
func (h *ModelHandle) Classifier() (Classifier, error) {
	if h == nil {
		return nil, goerr.Wrap(ErrModelUnavailable, "no model handle")
	}
	h.once.Do(h.load)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clf, h.err
}

func (h *ModelHandle) load() {
	clf, err := h.open()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clf, h.err = clf, err
}

func (h *ModelHandle) open() (Classifier, error) {
	if h.loader == nil {
		return nil, goerr.Wrap(ErrModelUnavailable, "no model loader configured")
	}
	clf, err := h.loader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if clf == nil {
		return nil, goerr.Wrap(ErrModelUnavailable, "model loader returned no classifier")
	}
	return clf, nil
}

// Close releases a loaded classifier. Later calls to Classifier report
// ErrModelUnavailable; a handle that was never used is not loaded by Close.
// A classifier already handed out must not be used after Close.
func (h *ModelHandle) Close() error {
	if h == nil {
		return nil
	}
	closed := goerr.Wrap(ErrModelUnavailable, "model handle closed")
	h.once.Do(func() {})

	h.mu.Lock()
	clf := h.clf
	h.clf, h.err = nil, closed
	h.mu.Unlock()

	if clf == nil {
		return nil
	}
	return clf.Close()
}
