package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/vartrans/pkg/casing"
	"github.com/dasmlab/vartrans/pkg/editor"
	"github.com/dasmlab/vartrans/pkg/picker"
	"github.com/dasmlab/vartrans/pkg/retry"
	"github.com/dasmlab/vartrans/pkg/translate"
)

// Labels of the translation row.
const (
	TranslationDescription = "translation"
	PendingLabel           = "translating…"
	FailedLabel            = "translation failed"
)

// ErrTranslationAborted is returned by Convert when the user gave up on a
// failing translation.
var ErrTranslationAborted = errors.New("translation aborted")

// TextTranslator turns raw text into its translation, or "" on failure.
// *translate.Client implements it.
type TextTranslator interface {
	Translate(ctx context.Context, raw string) string
}

// Orchestrator runs the translate, pick and replace flow for selections.
type Orchestrator struct {
	translator TextTranslator
	retry      *retry.Controller
	session    *picker.Session
	logger     *logrus.Logger

	flows sync.WaitGroup
}

// NewOrchestrator wires the collaborators of a flow. session may be nil
// for callers that only use Convert.
func NewOrchestrator(translator TextTranslator, ctrl *retry.Controller, session *picker.Session, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		translator: translator,
		retry:      ctrl,
		session:    session,
		logger:     logger,
	}
}

// Run shows the case variants of text at once, translates text in the
// background and swaps the translated variants in when they arrive. The
// option the user accepts is passed to replace and returned. A dismissed
// list returns "" and a nil error without calling replace.
func (o *Orchestrator) Run(ctx context.Context, text string, replace func(string) error) (string, error) {
	if o.session == nil {
		return "", errors.New("orchestrator has no picker session")
	}

	original := VariantOptions(text)
	p := o.session.Open(withTranslation(original, PendingLabel), false)

	o.flows.Add(1)
	go func() {
		defer o.flows.Done()
		o.settle(ctx, p, text, original)
	}()

	pick, err := p.Wait(ctx)
	if err != nil {
		return "", err
	}
	if !pick.OK {
		o.logger.WithField("text", text).Debug("Picker dismissed, nothing replaced")
		return "", nil
	}
	if err := replace(pick.Label); err != nil {
		return "", fmt.Errorf("replace %q: %w", text, err)
	}
	o.logger.WithFields(logrus.Fields{
		"text":        text,
		"replacement": pick.Label,
		"style":       pick.Description,
	}).Info("Selection replaced")
	return pick.Label, nil
}

// settle runs the retry flow and publishes its outcome to the list opened
// for p.
func (o *Orchestrator) settle(ctx context.Context, p *picker.Pending, text string, original []picker.Option) {
	translated := o.retry.Attempt(ctx, "translating", func(ctx context.Context) string {
		return o.translator.Translate(ctx, text)
	})

	var options []picker.Option
	if translated != "" {
		options = withTranslation(VariantOptions(translated), translated)
	} else {
		options = withTranslation(original, FailedLabel)
	}

	if !o.session.Update(p, options) {
		o.logger.WithFields(logrus.Fields{
			"text":       text,
			"translated": translated,
		}).Debug("Translation arrived after the picker closed")
	}
}

// Wait blocks until every background translation started by Run has
// settled.
func (o *Orchestrator) Wait() {
	o.flows.Wait()
}

// RunSelections runs one flow per selection of surface, in order, and
// replaces through the surface. It returns the number of replacements.
func (o *Orchestrator) RunSelections(ctx context.Context, surface editor.Surface) (int, error) {
	replaced := 0
	for _, sel := range surface.Selections() {
		if ctx.Err() != nil {
			return replaced, ctx.Err()
		}
		r := sel.Range
		label, err := o.Run(ctx, sel.Text, func(text string) error {
			return surface.Replace(r, text)
		})
		if err != nil {
			return replaced, err
		}
		if label != "" {
			replaced++
		}
	}
	return replaced, nil
}

// Convert applies style to text without a picker. Chinese text is
// translated first.
func (o *Orchestrator) Convert(ctx context.Context, text string, style casing.Style) (string, error) {
	if translate.IsChinese(text) {
		translated := o.retry.Attempt(ctx, "translating", func(ctx context.Context) string {
			return o.translator.Translate(ctx, text)
		})
		if translated == "" {
			return "", fmt.Errorf("convert %q: %w", text, ErrTranslationAborted)
		}
		text = translated
	}
	return style.Convert(text), nil
}

// VariantOptions lists text in every case style, in declared order.
func VariantOptions(text string) []picker.Option {
	variants := casing.Variants(text)
	out := make([]picker.Option, len(variants))
	for i, v := range variants {
		out[i] = picker.Option{Label: v.Text, Description: v.Description}
	}
	return out
}

func withTranslation(options []picker.Option, label string) []picker.Option {
	out := make([]picker.Option, 0, len(options)+1)
	out = append(out, options...)
	return append(out, picker.Option{Label: label, Description: TranslationDescription})
}
