package app

import (
	"context"
	"errors"

	"yashubustudio/evtrisk/riskmodel"
)

// State of an operator session. Only an explicit predict moves it.
type State int

const (
	StateIdle State = iota
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluated:
		return "evaluated"
	}
	return "unknown"
}

// Outcome is what the result panel renders after a predict.
type Outcome struct {
	Assessment riskmodel.RiskAssessment
	Report     riskmodel.Report
	Err        error
	ErrReport  riskmodel.ErrorReport
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Session owns one operator's inputs and last result.
type Session struct {
	form      *riskmodel.Form
	evaluator *riskmodel.Evaluator
	state     State
	last      Outcome
}

func newSession(form *riskmodel.Form, evaluator *riskmodel.Evaluator) *Session {
	return &Session{form: form, evaluator: evaluator, state: StateIdle}
}

func (s *Session) Form() *riskmodel.Form {
	return s.form
}

func (s *Session) State() State {
	return s.state
}

// Last returns the outcome of the latest predict, if any.
func (s *Session) Last() (Outcome, bool) {
	return s.last, s.state == StateEvaluated
}

// Predict encodes the current inputs and evaluates them. Failures are part of
// the outcome; the session stays usable either way.
func (s *Session) Predict(ctx context.Context) Outcome {
	var out Outcome
	v, err := s.form.FeatureVector()
	if err == nil {
		out.Assessment, err = s.evaluator.Evaluate(ctx, v)
	}
	if err != nil {
		out.Err = err
		out.ErrReport = riskmodel.NewErrorReport(err)
	} else {
		out.Report = riskmodel.NewReport(out.Assessment)
	}
	s.state = StateEvaluated
	s.last = out
	return out
}

func isModelUnavailable(err error) bool {
	return errors.Is(err, riskmodel.ErrModelUnavailable)
}
