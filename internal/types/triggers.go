package types

import "github.com/go-playground/validator/v10"

// CallTriggerRequest starts a phone interview stage (screening or technical)
// for one candidate.
type CallTriggerRequest struct {
	Name  string    `json:"name" validate:"required,min=1"`
	Phone string    `json:"phone" validate:"required,min=7"`
	Row   RowNumber `json:"row,omitempty"`
}

// VideoTriggerRequest creates a video interview invitation for one candidate.
type VideoTriggerRequest struct {
	CandidateName  string    `json:"candidateName" validate:"required,min=1"`
	CandidateEmail string    `json:"candidateEmail" validate:"required,email"`
	Row            RowNumber `json:"row,omitempty"`
}

// TransferRequest moves an uploaded résumé from the applicant-tracking file
// store into the document library.
type TransferRequest struct {
	FileID        string `json:"fileId" validate:"required"`
	ApplicantName string `json:"applicantName,omitempty"`
}

// Validate validates the CallTriggerRequest using the validator.
func (r *CallTriggerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the VideoTriggerRequest using the validator.
func (r *VideoTriggerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the TransferRequest using the validator.
func (r *TransferRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
