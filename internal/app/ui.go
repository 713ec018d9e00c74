package app

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/evtrisk/riskmodel"
)

const (
	windowTitle = "Thrombosis Risk Prediction System"
	pageTitle   = "Prediction of Recurrence after EVT of Intracranial Aneurysms"
)

type uiState struct {
	service *Service
	session *Session

	w fyne.Window

	selects      map[riskmodel.Field]*widget.Select
	sliders      map[riskmodel.Field]*widget.Slider
	sliderLabels map[riskmodel.Field]*widget.Label

	encoded    []riskmodel.FeatureValue
	encodedTbl *widget.Table

	predictBtn  *widget.Button
	modelStatus *widget.Label
	status      *widget.Label

	probability   *widget.Label
	riskLabel     *widget.Label
	thresholdHint *widget.Label
	indicator     *widget.ProgressBar
	advisory      *widget.Label
	errorMsg      *widget.Label
	errorHint     *widget.Label
	result        *fyne.Container

	log *widget.Entry
}

func buildUI(a fyne.App, svc *Service, logBind binding.String) *uiState {
	u := &uiState{
		service:      svc,
		session:      svc.NewSession(),
		selects:      make(map[riskmodel.Field]*widget.Select),
		sliders:      make(map[riskmodel.Field]*widget.Slider),
		sliderLabels: make(map[riskmodel.Field]*widget.Label),
	}
	u.w = a.NewWindow(windowTitle)

	form := u.session.Form()
	table := form.Manifest().Table()
	items := make([]*widget.FormItem, 0, len(riskmodel.FeatureOrder))
	for _, field := range riskmodel.FeatureOrder {
		if field.IsNumeric() {
			items = append(items, &widget.FormItem{Text: field.Title(), Widget: u.makeSlider(field)})
			continue
		}
		f := field
		sel := widget.NewSelect(table.Labels(f), nil)
		sel.SetSelected(form.Selected(f))
		sel.OnChanged = func(label string) {
			if err := u.session.Form().Select(f, label); err != nil {
				dialog.ShowError(err, u.w)
				return
			}
			u.refreshEncoded()
		}
		u.selects[f] = sel
		items = append(items, &widget.FormItem{Text: f.Title(), Widget: sel})
	}
	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Patient Clinical Parameters", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		&widget.Form{Items: items},
	)

	u.encodedTbl = widget.NewTable(
		func() (int, int) { return 2, len(u.encoded) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Col >= len(u.encoded) {
				lbl.SetText("")
				return
			}
			col := u.encoded[id.Col]
			if id.Row == 0 {
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				lbl.SetText(string(col.Field))
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			lbl.SetText(col.Value)
		},
	)
	for i := range riskmodel.FeatureOrder {
		u.encodedTbl.SetColumnWidth(i, 190)
	}
	encodedScroll := container.NewHScroll(u.encodedTbl)
	encodedScroll.SetMinSize(fyne.NewSize(400, 80))
	u.refreshEncoded()

	u.predictBtn = widget.NewButtonWithIcon("Predict", theme.MediaPlayIcon(), func() { u.onPredict() })
	u.predictBtn.Importance = widget.HighImportance
	u.modelStatus = widget.NewLabel("")
	u.modelStatus.Wrapping = fyne.TextWrapWord
	u.status = widget.NewLabel("Ready")

	u.probability = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	u.riskLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	u.thresholdHint = widget.NewLabel("")
	u.indicator = widget.NewProgressBar()
	u.indicator.Min, u.indicator.Max = 0, 1
	u.indicator.TextFormatter = func() string {
		return fmt.Sprintf("Risk Index %.0f%%", u.indicator.Value*100)
	}
	u.advisory = widget.NewLabel("")
	u.advisory.Wrapping = fyne.TextWrapWord
	u.advisory.Importance = widget.WarningImportance
	u.errorMsg = widget.NewLabel("")
	u.errorMsg.Wrapping = fyne.TextWrapWord
	u.errorMsg.Importance = widget.DangerImportance
	u.errorHint = widget.NewLabel("")
	u.errorHint.Wrapping = fyne.TextWrapWord

	u.result = container.NewVBox(
		container.NewGridWithColumns(2,
			container.NewVBox(widget.NewLabel("Probability of Recurrence"), u.probability),
			container.NewVBox(u.riskLabel, u.thresholdHint),
		),
		u.indicator,
		u.advisory,
		u.errorMsg,
		u.errorHint,
	)
	u.clearResult()

	u.log = widget.NewEntryWithData(logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.Disable()
	logScroll := container.NewVScroll(u.log)
	logScroll.SetMinSize(fyne.NewSize(200, 120))

	body := container.NewVBox(
		widget.NewLabelWithStyle(pageTitle, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		u.modelStatus,
		widget.NewAccordion(widget.NewAccordionItem("View Input Feature Values (Encoded)", encodedScroll)),
		container.NewHBox(u.predictBtn, u.status),
		widget.NewSeparator(),
		u.result,
		widget.NewSeparator(),
		widget.NewAccordion(widget.NewAccordionItem("Log", logScroll)),
	)

	split := container.NewHSplit(container.NewVScroll(sidebar), container.NewVScroll(body))
	split.Offset = 0.32
	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	u.refreshModelStatus()
	return u
}

func (u *uiState) makeSlider(field riskmodel.Field) fyne.CanvasObject {
	form := u.session.Form()
	bounds := form.Manifest().Bounds(field)
	current := form.Width()
	if field == riskmodel.Neck {
		current = form.Neck()
	}

	label := widget.NewLabel(formatMillimetres(current))
	slider := widget.NewSlider(bounds.Min, bounds.Max)
	slider.Step = bounds.Step
	slider.SetValue(current)
	slider.OnChanged = func(v float64) {
		stored, err := u.session.Form().SetNumeric(field, v)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		label.SetText(formatMillimetres(stored))
		u.refreshEncoded()
	}
	u.sliders[field] = slider
	u.sliderLabels[field] = label
	return container.NewBorder(nil, nil, nil, label, slider)
}

func formatMillimetres(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

func (u *uiState) refreshEncoded() {
	v, err := u.session.Form().FeatureVector()
	if err != nil {
		u.encoded = nil
	} else {
		u.encoded = v.Columns()
	}
	if u.encodedTbl != nil {
		u.encodedTbl.Refresh()
	}
}

func (u *uiState) refreshModelStatus() {
	text, err := u.service.ModelStatus()
	u.modelStatus.SetText(text)
	if err != nil {
		u.modelStatus.Importance = widget.DangerImportance
	} else {
		u.modelStatus.Importance = widget.MediumImportance
	}
	u.modelStatus.Refresh()
}

func (u *uiState) onPredict() {
	u.predictBtn.Disable()
	defer u.predictBtn.Enable()
	u.status.SetText("Predicting...")

	out := u.session.Predict(context.Background())
	u.renderOutcome(out)
	if out.Failed() {
		u.status.SetText("Error")
		if !isModelUnavailable(out.Err) {
			dialog.ShowError(out.Err, u.w)
		}
		return
	}
	u.status.SetText("Done")
}

func (u *uiState) clearResult() {
	u.probability.SetText("")
	u.riskLabel.SetText("")
	u.thresholdHint.SetText("")
	u.indicator.SetValue(0)
	u.indicator.Hide()
	u.advisory.SetText("")
	u.advisory.Hide()
	u.errorMsg.SetText("")
	u.errorMsg.Hide()
	u.errorHint.SetText("")
	u.errorHint.Hide()
}

func (u *uiState) renderOutcome(out Outcome) {
	u.clearResult()
	if out.Failed() {
		u.errorMsg.SetText(out.ErrReport.Message)
		u.errorMsg.Show()
		if out.ErrReport.Hint != "" {
			u.errorHint.SetText(out.ErrReport.Hint)
			u.errorHint.Show()
		}
		return
	}
	r := out.Report
	u.probability.SetText(r.Probability)
	u.riskLabel.SetText(r.RiskLabel)
	if out.Assessment.HighRisk() {
		u.riskLabel.Importance = widget.DangerImportance
	} else {
		u.riskLabel.Importance = widget.SuccessImportance
	}
	u.riskLabel.Refresh()
	u.thresholdHint.SetText(fmt.Sprintf("(%s)", r.ThresholdHint))
	u.indicator.SetValue(r.Indicator)
	u.indicator.Show()
	if r.Advisory != "" {
		u.advisory.SetText("Note: " + r.Advisory)
		u.advisory.Show()
	}
}
