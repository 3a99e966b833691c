package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/recruit-pipeline/internal/types"
)

// handleResumeTransfer moves an uploaded résumé from the applicant-tracking
// store into the document library.
func (s *Server) handleResumeTransfer(w http.ResponseWriter, r *http.Request) {
	var req types.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing fileId")
		return
	}
	if s.transfer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, (&ErrIntegrationUnavailable{Integration: "document library"}).Error())
		return
	}

	result, fileName, err := s.transfer.Run(r.Context(), req.FileID, req.ApplicantName)
	if err != nil {
		log.Printf("Resume transfer failed for file %s: %v", req.FileID, err)
		s.jsonResponse(w, HTTPStatus(err), map[string]string{
			"error":   "Failed to upload to document library",
			"details": err.Error(),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"id":        result.ID,
		"webUrl":    result.WebURL,
		"message":   "Uploaded to document library successfully",
		"fileName":  fileName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
