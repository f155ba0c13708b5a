package forms

import (
	"strconv"

	log "github.com/sirupsen/logrus"

	"autoapply/automation"
	"autoapply/locators"
	"autoapply/runlog"
)

// MaxAdvanceSteps bounds how many step-advance clicks one attempt makes.
const MaxAdvanceSteps = 3

// AnswerScreening walks a multi-step form by clicking next-style buttons,
// never submit controls, until none remain or the step cap is hit.
func (e *Engine) AnswerScreening(page automation.Page, meta Meta) error {
	log.Info("Attempting to advance through apply steps")

	script := locators.Inject(locators.NextButtonScript, locators.NextPhrases, locators.SubmitPhrases)
	for step := 1; step <= MaxAdvanceSteps; step++ {
		e.captureStep(page, meta, "before-advance-"+strconv.Itoa(step))

		var selector *string
		if err := page.Evaluate(script, &selector); err != nil {
			return err
		}
		if selector == nil || *selector == "" {
			log.Info("No further step buttons found.")
			return nil
		}
		if err := page.Click(*selector); err != nil {
			return err
		}
		log.Info("Advanced to next step")
		meta.RunLog.LogEvent(runlog.Event{
			RunID:     meta.RunID,
			ListingID: meta.ListingID,
			ApplyType: meta.ApplyType,
			Step:      "advance-step",
			Reason:    "step-" + strconv.Itoa(step),
		})
	}

	log.Warn("Max advance steps reached without submit.")
	return nil
}
