package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/recruit-pipeline/internal/db"
	"github.com/jonathan/recruit-pipeline/internal/prompts"
	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"github.com/jonathan/recruit-pipeline/internal/tavus"
	"github.com/jonathan/recruit-pipeline/internal/types"
	"github.com/jonathan/recruit-pipeline/internal/vapi"
)

// handleScreeningTrigger starts a phone screening call. The status cell is
// written before the call is placed so a double-submitted row is visible as
// already called; a failed status write does not block the call.
func (s *Server) handleScreeningTrigger(w http.ResponseWriter, r *http.Request) {
	var req types.CallTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing required fields: name or phone")
		return
	}
	if s.calls == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrIntegrationUnavailable{Integration: "voice provider"}).Error())
		return
	}

	rule, _ := s.rubrics.ForStage(rubric.StageScreening)
	row := req.Row.Int()

	if row > 0 {
		statusRange := rule.StatusRange(row)
		if err := s.records.Update(r.Context(), statusRange, [][]any{{rule.TriggerStatus}}); err != nil {
			// Continue with the call; the status cell is advisory here.
			log.Printf("Could not update status for row %d: %v", row, err)
		}
	}

	resp, err := s.calls.StartCall(r.Context(), vapi.CallRequest{
		AssistantID:   s.cfg.ScreeningAssistantID,
		PhoneNumberID: s.cfg.ScreeningPhoneNumberID,
		Customer:      vapi.Customer{Number: req.Phone},
		Metadata:      callMetadata(req.Name, row, rule.Tag),
	})
	if err != nil {
		log.Printf("Failed to initiate screening call: %v", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Failed to initiate call",
			"details": err.Error(),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":       "call scheduled",
		"callResponse": resp,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTechnicalTrigger starts a technical interview call.
func (s *Server) handleTechnicalTrigger(w http.ResponseWriter, r *http.Request) {
	var req types.CallTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing required fields: name or phone")
		return
	}
	if s.calls == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrIntegrationUnavailable{Integration: "voice provider"}).Error())
		return
	}

	rule, _ := s.rubrics.ForStage(rubric.StageTechnical)
	row := req.Row.Int()

	if row > 0 {
		statusRange := rule.StatusRange(row)
		if err := s.records.Update(r.Context(), statusRange, [][]any{{rule.TriggerStatus}}); err != nil {
			log.Printf("Failed to update status for row %d: %v", row, err)
			s.jsonResponse(w, HTTPStatus(err), map[string]string{
				"error":   "Failed to initiate LionAgent call",
				"details": err.Error(),
			})
			return
		}
	}

	resp, err := s.calls.StartCall(r.Context(), vapi.CallRequest{
		AssistantID:   s.cfg.TechnicalAssistantID,
		PhoneNumberID: s.cfg.TechnicalPhoneNumberID,
		Customer:      vapi.Customer{Number: req.Phone},
		Metadata:      callMetadata(req.Name, row, rule.Tag),
	})
	if err != nil {
		log.Printf("Failed to initiate technical call: %v", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Failed to initiate LionAgent call",
			"details": err.Error(),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "LionAgent call scheduled",
		"data":   resp,
	})
}

// handleVideoTrigger creates a video interview session and prepares the
// invitation email. The conversation ID is recorded against the row in both
// the sheet and the conversation index so the callback can find its way back.
func (s *Server) handleVideoTrigger(w http.ResponseWriter, r *http.Request) {
	var req types.VideoTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing required fields: candidateName or candidateEmail")
		return
	}
	if s.videos == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrIntegrationUnavailable{Integration: "video provider"}).Error())
		return
	}

	rule, _ := s.rubrics.ForStage(rubric.StageVideo)
	row := req.Row.Int()

	if row > 0 {
		statusRange := rule.StatusRange(row)
		if err := s.records.Update(r.Context(), statusRange, [][]any{{rule.TriggerStatus}}); err != nil {
			log.Printf("Failed to update status for row %d: %v", row, err)
			s.jsonResponse(w, HTTPStatus(err), map[string]string{
				"error":   "Failed to create video interview",
				"details": err.Error(),
			})
			return
		}
	}

	conversationalContext := prompts.Format(
		prompts.MustGet("video.json", "conversational_context"),
		map[string]string{"CandidateName": req.CandidateName},
	)

	conv, err := s.videos.CreateConversation(r.Context(), tavus.ConversationRequest{
		ReplicaID:             s.cfg.TavusReplicaID,
		PersonaID:             s.cfg.TavusPersonaID,
		CallbackURL:           s.callbackURL(r),
		ConversationName:      "Behavioral Interview - " + req.CandidateName,
		ConversationalContext: conversationalContext,
		Properties:            tavus.DefaultInterviewProperties(),
	})
	if err != nil {
		log.Printf("Failed to create video interview: %v", err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Failed to create video interview",
			"details": err.Error(),
		})
		return
	}

	if row > 0 {
		detailsRange := rubric.ConversationDetailsRange(row)
		details := [][]any{{conv.ConversationID, conv.ConversationURL, time.Now().UTC().Format(time.RFC3339)}}
		if err := s.records.Update(r.Context(), detailsRange, details); err != nil {
			log.Printf("Failed to record conversation details for row %d: %v", row, err)
			s.jsonResponse(w, HTTPStatus(err), map[string]string{
				"error":   "Failed to create video interview",
				"details": err.Error(),
			})
			return
		}
	}

	if s.index != nil && row > 0 {
		// Sheet column Q already holds the mapping; the index is the fast
		// path, so a failed save only costs the callback a sheet scan.
		entry := db.Conversation{
			ConversationID:  conv.ConversationID,
			RowID:           row,
			CandidateName:   req.CandidateName,
			ConversationURL: conv.ConversationURL,
		}
		if err := s.index.SaveConversation(r.Context(), entry); err != nil {
			log.Printf("Failed to index conversation %s: %v", conv.ConversationID, err)
		}
	}

	emailData := map[string]string{
		"CandidateName":   req.CandidateName,
		"ConversationURL": conv.ConversationURL,
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":          "Video interview invitation created",
		"conversationId":  conv.ConversationID,
		"conversationUrl": conv.ConversationURL,
		"candidateName":   req.CandidateName,
		"candidateEmail":  req.CandidateEmail,
		"emailSubject":    prompts.MustGet("email.json", "invite_subject"),
		"emailBody":       prompts.Format(prompts.MustGet("email.json", "invite_body"), emailData),
		"message":         "Video interview link ready - send email manually or integrate with email service",
	})
}

// callbackURL builds the externally reachable video callback URL, preferring
// the configured public base over whatever host the request came in on.
func (s *Server) callbackURL(r *http.Request) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/whaleagent-callback"
}

func callMetadata(name string, row int, tag string) vapi.CallMetadata {
	meta := vapi.CallMetadata{CandidateName: name, Stage: tag}
	if row > 0 {
		meta.RowNumber = strconv.Itoa(row)
	}
	return meta
}
