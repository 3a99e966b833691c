// Package pipeline contains the callback dispatcher: the logic that turns an
// asynchronous completion event from a voice or video provider into an LLM
// evaluation and a record-sheet write for the right candidate row.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jonathan/recruit-pipeline/internal/llm"
	"github.com/jonathan/recruit-pipeline/internal/prompts"
	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"github.com/jonathan/recruit-pipeline/internal/types"
)

// RecordWriter performs range-addressed writes to the record sheet.
type RecordWriter interface {
	Update(ctx context.Context, rangeExpr string, values [][]any) error
}

// Correlator resolves a provider conversation ID to a sheet row. Video
// callbacks carry no row identifier, so the row recorded at trigger time must
// be looked up here.
type Correlator interface {
	FindRowByConversationID(ctx context.Context, conversationID string) (int, bool, error)
}

// AnalysisStore archives evaluation text to the document library. Optional;
// archiving is best-effort and never fails a callback.
type AnalysisStore interface {
	StoreAnalysis(ctx context.Context, name, content string) error
}

// Outcome classifies how a single callback delivery was handled. Every
// outcome is terminal for that delivery; no state is carried across
// callbacks.
type Outcome string

// Callback outcomes.
const (
	// OutcomeIgnored: the event is not a terminal completion report.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeEmpty: terminal, but there is no transcript or row to process.
	OutcomeEmpty Outcome = "empty"
	// OutcomeUnresolved: terminal with transcript, but no row could be
	// correlated; the write is skipped rather than attempted blind.
	OutcomeUnresolved Outcome = "unresolved"
	// OutcomeProcessed: evaluated, extracted, and written.
	OutcomeProcessed Outcome = "processed"
)

// Result summarizes the handling of one callback delivery.
type Result struct {
	Outcome        Outcome
	Message        string
	Stage          string // provider stage tag, e.g. "lionagent"
	CandidateName  string
	Row            int
	Score          string
	Evaluation     string
	RecordingURL   string
	ConversationID string
}

// Dispatcher correlates completion events back to pipeline rows and runs the
// evaluate-extract-write sequence. All collaborators are injected so tests
// can substitute doubles.
type Dispatcher struct {
	rubrics    *rubric.Registry
	llm        llm.Client
	records    RecordWriter
	correlator Correlator
	analyses   AnalysisStore
}

// NewDispatcher creates a dispatcher. The correlator and analysis store may
// be nil: without a correlator every video callback resolves to no row, and
// without an analysis store archiving is skipped.
func NewDispatcher(rubrics *rubric.Registry, client llm.Client, records RecordWriter, correlator Correlator, analyses AnalysisStore) *Dispatcher {
	return &Dispatcher{
		rubrics:    rubrics,
		llm:        client,
		records:    records,
		correlator: correlator,
		analyses:   analyses,
	}
}

// HandleCallEvent processes one callback delivery from the voice provider.
// Non-terminal events and terminal events without a transcript or row are
// acknowledged without side effects. The returned error is a genuine
// processing failure (model or record store); everything skipped on purpose
// comes back as a Result.
func (d *Dispatcher) HandleCallEvent(ctx context.Context, ev *types.CallEvent) (*Result, error) {
	if !ev.Terminal() {
		return &Result{
			Outcome: OutcomeIgnored,
			Message: "Not end-of-call-report; ignoring.",
		}, nil
	}

	meta := ev.Message.Call.Metadata
	transcript := ev.Message.Transcript
	row := meta.RowNumber.Int()

	if transcript == "" || row == 0 {
		return &Result{
			Outcome: OutcomeEmpty,
			Message: "No transcript or row; nothing to process.",
		}, nil
	}

	rule := d.rubrics.ForTag(meta.Stage)
	return d.process(ctx, rule, row, meta.CandidateName, transcript, "")
}

// HandleConversationEvent processes one callback delivery from the video
// provider. The event carries only a conversation ID; the row is resolved
// through the correlator before anything else happens, so an unresolved
// conversation costs no model call and touches no cells.
func (d *Dispatcher) HandleConversationEvent(ctx context.Context, ev *types.ConversationEvent) (*Result, error) {
	if !ev.Terminal() {
		return &Result{
			Outcome:        OutcomeIgnored,
			Message:        fmt.Sprintf("Conversation status: %s", ev.Status),
			ConversationID: ev.ConversationID,
		}, nil
	}

	if ev.Transcript == "" {
		return &Result{
			Outcome:        OutcomeEmpty,
			Message:        "No transcript available",
			ConversationID: ev.ConversationID,
		}, nil
	}

	row, found, err := d.lookupRow(ctx, ev.ConversationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Result{
			Outcome:        OutcomeUnresolved,
			Message:        fmt.Sprintf("No row found for conversation %s; skipping record write.", ev.ConversationID),
			ConversationID: ev.ConversationID,
		}, nil
	}

	rule, _ := d.rubrics.ForStage(rubric.StageVideo)
	result, err := d.process(ctx, rule, row, "", ev.Transcript, ev.RecordingURL)
	if err != nil {
		return nil, err
	}
	result.ConversationID = ev.ConversationID

	d.archiveAnalysis(ctx, ev.ConversationID, result.Evaluation)
	return result, nil
}

// process runs the evaluate -> extract -> write sequence for a resolved row.
// Exactly one evaluation and one write sequence happens per call; a
// redelivered event reprocesses and overwrites the same cells.
func (d *Dispatcher) process(ctx context.Context, rule *rubric.Rule, row int, candidateName, transcript, recordingURL string) (*Result, error) {
	prompt := prompts.Format(rule.Prompt, map[string]string{"Transcript": transcript})

	evaluation, err := d.llm.GenerateContent(ctx, prompt, rule.Tier)
	if err != nil {
		return nil, &EvaluationError{Stage: rule.Tag, Cause: err}
	}

	score := rule.ExtractScore(evaluation)

	resultRange := rule.ResultRange(row)
	values := [][]any{rule.ResultValues(transcript, score, evaluation, recordingURL)}
	if err := d.records.Update(ctx, resultRange, values); err != nil {
		return nil, &WriteError{Range: resultRange, Cause: err}
	}

	if rule.CompletedStatus != "" {
		statusRange := rule.StatusRange(row)
		if err := d.records.Update(ctx, statusRange, [][]any{{rule.CompletedStatus}}); err != nil {
			return nil, &WriteError{Range: statusRange, Cause: err}
		}
	}

	return &Result{
		Outcome:       OutcomeProcessed,
		Message:       fmt.Sprintf("%s callback processed and sheet updated", rule.Tag),
		Stage:         rule.Tag,
		CandidateName: candidateName,
		Row:           row,
		Score:         score,
		Evaluation:    evaluation,
		RecordingURL:  recordingURL,
	}, nil
}

func (d *Dispatcher) lookupRow(ctx context.Context, conversationID string) (int, bool, error) {
	if d.correlator == nil {
		return 0, false, nil
	}
	return d.correlator.FindRowByConversationID(ctx, conversationID)
}

// archiveAnalysis uploads the evaluation text to the document library.
// Failures are logged and swallowed; the sheet is the system of record.
func (d *Dispatcher) archiveAnalysis(ctx context.Context, conversationID, evaluation string) {
	if d.analyses == nil || evaluation == "" {
		return
	}
	name := fmt.Sprintf("WhaleAgent_Analysis_%s_%s.txt", conversationID, uuid.New().String())
	content := fmt.Sprintf("WHALEAGENT VIDEO INTERVIEW ANALYSIS\n\nConversation ID: %s\n\n%s", conversationID, evaluation)
	if err := d.analyses.StoreAnalysis(ctx, name, content); err != nil {
		log.Printf("Failed to archive analysis for conversation %s: %v", conversationID, err)
	}
}
