// Package ortmodel runs a binary classifier exported to ONNX (for example an
// XGBoost model converted with onnxmltools) through ONNX Runtime.
package ortmodel

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	ort "github.com/yalue/onnxruntime_go"

	"yashubustudio/evtrisk/riskmodel"
)

// Config describes the model artifact and the tensors to bind.
type Config struct {
	SharedLibrary string
	ModelPath     string
	ModelID       string
	InputName     string
	OutputName    string
	PositiveClass int
	NumClasses    int
}

// FromClassifierConfig converts the deploy-time settings.
func FromClassifierConfig(cfg riskmodel.ClassifierConfig) Config {
	return Config{
		SharedLibrary: cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		InputName:     cfg.InputName,
		OutputName:    cfg.OutputName,
		PositiveClass: cfg.PositiveClass,
		NumClasses:    cfg.NumClasses,
	}
}

var (
	envMu    sync.Mutex
	envReady bool
)

func initEnvironment(sharedLibrary string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envReady || ort.IsInitialized() {
		envReady = true
		return nil
	}
	if sharedLibrary != "" {
		ort.SetSharedLibraryPath(sharedLibrary)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return goerr.Wrap(err, "initialize onnxruntime", goerr.V("shared_library", sharedLibrary))
	}
	envReady = true
	return nil
}

// Classifier is a read-only ONNX Runtime session. Tensors are allocated per
// call, so one Classifier can serve every operator session.
type Classifier struct {
	cfg     Config
	session *ort.DynamicAdvancedSession
}

// Open checks the artifact, initializes ONNX Runtime and creates the session.
func Open(cfg Config) (*Classifier, error) {
	if cfg.ModelPath == "" {
		return nil, goerr.New("model path is empty")
	}
	if cfg.InputName == "" || cfg.OutputName == "" {
		return nil, goerr.New("input and output tensor names are required",
			goerr.V("input", cfg.InputName), goerr.V("output", cfg.OutputName))
	}
	if cfg.NumClasses <= 0 {
		cfg.NumClasses = 2
	}
	if cfg.PositiveClass < 0 || cfg.PositiveClass >= cfg.NumClasses {
		return nil, goerr.New("positive class index out of range",
			goerr.V("positive_class", cfg.PositiveClass), goerr.V("num_classes", cfg.NumClasses))
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(err, "model file not found", goerr.V(riskmodel.ModelPathKey, cfg.ModelPath))
		}
		return nil, goerr.Wrap(err, "stat model file", goerr.V(riskmodel.ModelPathKey, cfg.ModelPath))
	}
	if err := initEnvironment(cfg.SharedLibrary); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, goerr.Wrap(err, "inspect model", goerr.V(riskmodel.ModelPathKey, cfg.ModelPath))
	}
	if err := checkIO(cfg, inputs, outputs); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "create onnxruntime session", goerr.V(riskmodel.ModelPathKey, cfg.ModelPath))
	}
	return &Classifier{cfg: cfg, session: session}, nil
}

// ModelID identifies the artifact in logs and assessments.
func (c *Classifier) ModelID() string {
	return c.cfg.ModelID
}

// PredictProba runs the model on a single row and returns the probability of
// the positive class.
func (c *Classifier) PredictProba(ctx context.Context, v riskmodel.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if c.session == nil {
		return 0, goerr.New("session is closed")
	}
	values := v.Values()
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(values))), values)
	if err != nil {
		return 0, goerr.Wrap(err, "create input tensor")
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(c.cfg.NumClasses)))
	if err != nil {
		return 0, goerr.Wrap(err, "create output tensor")
	}
	defer output.Destroy()

	if err := c.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return 0, goerr.Wrap(err, "run session", goerr.V("model_id", c.cfg.ModelID))
	}
	probs := output.GetData()
	if len(probs) <= c.cfg.PositiveClass {
		return 0, goerr.New("probability output too short",
			goerr.V("length", len(probs)), goerr.V("positive_class", c.cfg.PositiveClass))
	}
	p := float64(probs[c.cfg.PositiveClass])
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, goerr.New("probability output out of range", goerr.V("probability", p))
	}
	return p, nil
}

// Close releases the session.
func (c *Classifier) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	return err
}

// checkIO confirms the tensors named in cfg exist and that their fixed
// trailing dimensions match the feature vector and the class count.
func checkIO(cfg Config, inputs, outputs []ort.InputOutputInfo) error {
	in, ok := findInfo(inputs, cfg.InputName)
	if !ok {
		return goerr.New("model has no such input",
			goerr.V("input", cfg.InputName), goerr.V("available", infoNames(inputs)))
	}
	if last, ok := lastDim(in); ok && last != int64(len(riskmodel.FeatureOrder)) {
		return goerr.New("model input width does not match the feature vector",
			goerr.V("expected", len(riskmodel.FeatureOrder)), goerr.V("actual", last))
	}
	out, ok := findInfo(outputs, cfg.OutputName)
	if !ok {
		return goerr.New("model has no such output",
			goerr.V("output", cfg.OutputName), goerr.V("available", infoNames(outputs)))
	}
	if last, ok := lastDim(out); ok && last != int64(cfg.NumClasses) {
		return goerr.New("model output width does not match the class count",
			goerr.V("expected", cfg.NumClasses), goerr.V("actual", last))
	}
	return nil
}

// lastDim returns the trailing dimension when it is fixed.
func lastDim(info ort.InputOutputInfo) (int64, bool) {
	n := len(info.Dimensions)
	if n == 0 || info.Dimensions[n-1] <= 0 {
		return 0, false
	}
	return info.Dimensions[n-1], true
}

func findInfo(infos []ort.InputOutputInfo, name string) (ort.InputOutputInfo, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return ort.InputOutputInfo{}, false
}

func infoNames(infos []ort.InputOutputInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
