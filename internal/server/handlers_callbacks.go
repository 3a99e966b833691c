package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/recruit-pipeline/internal/pipeline"
	"github.com/jonathan/recruit-pipeline/internal/schemas"
	"github.com/jonathan/recruit-pipeline/internal/types"
)

// maxCallbackBody caps callback payload reads. Transcripts for a 40 minute
// interview fit comfortably under this.
const maxCallbackBody = 10 << 20

// readValidatedBody reads the request body and checks it against the named
// payload schema. A non-nil error has already been written to the response.
func (s *Server) readValidatedBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}

	if err := schemas.Validate(schema, body); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			s.errorResponse(w, http.StatusBadRequest, validationErr.Error())
		} else {
			s.errorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		}
		return nil, false
	}
	return body, true
}

// handleCallCallback processes completion reports for both phone stages. The
// stage tag in the call metadata selects the rubric.
func (s *Server) handleCallCallback(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readValidatedBody(w, r, schemas.CallCallback)
	if !ok {
		return
	}

	var event types.CallEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.dispatcher.HandleCallEvent(r.Context(), &event)
	if err != nil {
		log.Printf("Call callback processing failed: %v", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	if s.verbose {
		s.printer.PrintDispatchResult(result)
	}

	if result.Outcome != pipeline.OutcomeProcessed {
		s.jsonResponse(w, http.StatusOK, map[string]string{"message": result.Message})
		return
	}

	response := map[string]any{
		"message":       result.Message,
		"candidateName": result.CandidateName,
		"row":           result.Row,
		"stage":         result.Stage,
	}
	// The technical stage reports its evaluation as feedback with a score;
	// the screening stage reports an analysis only.
	if result.Score != "" {
		response["aiFeedback"] = result.Evaluation
		response["overallScore"] = result.Score
	} else {
		response["analysis"] = result.Evaluation
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleVideoCallback processes completed video interviews. The row comes
// from the conversation index rather than the payload.
func (s *Server) handleVideoCallback(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readValidatedBody(w, r, schemas.VideoCallback)
	if !ok {
		return
	}

	var event types.ConversationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.dispatcher.HandleConversationEvent(r.Context(), &event)
	if err != nil {
		log.Printf("Video callback processing failed: %v", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Failed to process video interview",
			"details": err.Error(),
		})
		return
	}

	if s.verbose {
		s.printer.PrintDispatchResult(result)
	}

	if result.Outcome != pipeline.OutcomeProcessed {
		s.jsonResponse(w, http.StatusOK, map[string]string{"message": result.Message})
		return
	}

	recordingURL := result.RecordingURL
	if recordingURL == "" {
		recordingURL = "Not available"
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":        "WhaleAgent video interview processed successfully",
		"conversationId": result.ConversationID,
		"overallScore":   result.Score,
		"analysisLength": len(result.Evaluation),
		"recordingUrl":   recordingURL,
	})
}
