// Package rubric maps pipeline stages to their evaluation prompts and to the
// record-sheet cell ranges their results are written to. Adding a stage is a
// table entry, not a new code branch.
package rubric

import (
	"fmt"
	"regexp"

	"github.com/jonathan/recruit-pipeline/internal/llm"
	"github.com/jonathan/recruit-pipeline/internal/prompts"
	"github.com/jonathan/recruit-pipeline/internal/scoring"
)

// SheetName is the tab of the record spreadsheet that holds the call queue.
const SheetName = "Call Queue"

// Stage identifies one stop in the recruitment pipeline.
type Stage string

// Pipeline stages in order.
const (
	StageScreening Stage = "screening"
	StageTechnical Stage = "technical"
	StageVideo     Stage = "video"
)

// Rule describes how one stage is evaluated and recorded.
type Rule struct {
	Stage Stage
	// Tag is the provider-facing stage label carried in call metadata and
	// echoed in responses (e.g. "lionagent").
	Tag string
	// Prompt is the rubric template; {{.Transcript}} is interpolated.
	Prompt string
	// Tier selects the model capability used for evaluation.
	Tier llm.ModelTier
	// ScorePattern extracts the overall score from the evaluation text.
	// Nil means the stage records no numeric score.
	ScorePattern *regexp.Regexp

	// Sheet addressing. Columns are letters; rows are 1-based.
	resultStartCol string
	resultEndCol   string
	statusCol      string

	// TriggerStatus is written to the status cell when the stage is kicked
	// off; CompletedStatus when its callback is processed. An empty
	// CompletedStatus means the callback leaves the status cell untouched.
	TriggerStatus   string
	CompletedStatus string

	// includeRecording widens the result row with the recording URL column.
	includeRecording bool
}

// ResultRange returns the A1 range the stage's result row is written to.
func (r *Rule) ResultRange(row int) string {
	return fmt.Sprintf("'%s'!%s%d:%s%d", SheetName, r.resultStartCol, row, r.resultEndCol, row)
}

// StatusRange returns the A1 range of the stage's status cell.
func (r *Rule) StatusRange(row int) string {
	return fmt.Sprintf("'%s'!%s%d", SheetName, r.statusCol, row)
}

// ResultValues builds the stage-specific result row. Column order follows the
// sheet layout: transcript, score, evaluation, and for video the recording URL.
func (r *Rule) ResultValues(transcript, score, evaluation, recordingURL string) []any {
	if r.ScorePattern == nil {
		score = ""
	}
	row := []any{transcript, score, evaluation}
	if r.includeRecording {
		row = append(row, recordingURL)
	}
	return row
}

// ExtractScore runs the stage's score pattern over the evaluation text.
func (r *Rule) ExtractScore(evaluation string) string {
	return scoring.Extract(evaluation, r.ScorePattern)
}

// Registry is the stage lookup table.
type Registry struct {
	rules map[Stage]*Rule
	tags  map[string]Stage
}

// NewRegistry builds the registry with the three built-in stages.
func NewRegistry() *Registry {
	rules := []*Rule{
		{
			Stage:          StageScreening,
			Tag:            "zebraagent",
			Prompt:         prompts.MustGet("rubrics.json", "screening"),
			Tier:           llm.TierStandard,
			resultStartCol: "G",
			resultEndCol:   "I",
			statusCol:      "F",
			TriggerStatus:  "Called",
			// The screening callback records its result without touching
			// the status cell; only the trigger writes it.
		},
		{
			Stage:           StageTechnical,
			Tag:             "lionagent",
			Prompt:          prompts.MustGet("rubrics.json", "technical"),
			Tier:            llm.TierStandard,
			ScorePattern:    scoring.TechnicalPattern,
			resultStartCol:  "M",
			resultEndCol:    "O",
			statusCol:       "L",
			TriggerStatus:   "LionAgent Called",
			CompletedStatus: "Completed",
		},
		{
			Stage:            StageVideo,
			Tag:              "whaleagent",
			Prompt:           prompts.MustGet("rubrics.json", "video"),
			Tier:             llm.TierAdvanced,
			ScorePattern:     scoring.VideoPattern,
			resultStartCol:   "T",
			resultEndCol:     "W",
			statusCol:        "P",
			TriggerStatus:    "Video Interview Sent",
			CompletedStatus:  "Video Completed",
			includeRecording: true,
		},
	}

	reg := &Registry{
		rules: make(map[Stage]*Rule, len(rules)),
		tags:  make(map[string]Stage, len(rules)),
	}
	for _, r := range rules {
		reg.rules[r.Stage] = r
		reg.tags[r.Tag] = r.Stage
		reg.tags[string(r.Stage)] = r.Stage
	}
	return reg
}

// ForStage returns the rule for a stage.
func (reg *Registry) ForStage(stage Stage) (*Rule, bool) {
	r, ok := reg.rules[stage]
	return r, ok
}

// ForTag resolves a stage tag from call metadata. Unknown or missing tags
// fall back to the screening stage, matching the behavior callers rely on
// when older triggers send no stage at all.
func (reg *Registry) ForTag(tag string) *Rule {
	if stage, ok := reg.tags[tag]; ok {
		return reg.rules[stage]
	}
	return reg.rules[StageScreening]
}

// ConversationDetailsRange is where the video trigger records the provider
// conversation: Q holds the conversation ID, R its URL, S the sent timestamp.
func ConversationDetailsRange(row int) string {
	return fmt.Sprintf("'%s'!Q%d:S%d", SheetName, row, row)
}

// ConversationIDColumn is the open-ended range scanned when correlating a
// provider conversation ID back to a sheet row. Data rows start at row 2.
const ConversationIDColumn = "'" + SheetName + "'!Q2:Q"

// ConversationIDFirstRow is the sheet row of the first entry in
// ConversationIDColumn.
const ConversationIDFirstRow = 2
