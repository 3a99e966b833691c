package filestore

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/sync/errgroup"
)

// filenameSanitizer strips characters that SharePoint path segments reject.
var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9-_.]`)

// Transfer moves a résumé from the applicant-tracking store to the document
// library.
type Transfer struct {
	hubspot    *HubSpotClient
	sharepoint *SharePointClient
}

// NewTransfer wires the two stores together.
func NewTransfer(hubspot *HubSpotClient, sharepoint *SharePointClient) *Transfer {
	return &Transfer{hubspot: hubspot, sharepoint: sharepoint}
}

// ResumeFileName builds the stored filename from the applicant's name.
func ResumeFileName(applicantName string) string {
	if applicantName == "" {
		applicantName = "cv"
	}
	return filenameSanitizer.ReplaceAllString(applicantName, "_") + ".docx"
}

// Run downloads the file behind fileID and uploads it to the document
// library. The download and the Graph token acquisition are independent, so
// they run concurrently; the upload itself needs both.
func (t *Transfer) Run(ctx context.Context, fileID, applicantName string) (*UploadResult, string, error) {
	fileName := ResumeFileName(applicantName)

	var content []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		signedURL, err := t.hubspot.SignedURL(gctx, fileID)
		if err != nil {
			return err
		}
		content, err = t.hubspot.Download(gctx, signedURL)
		return err
	})
	g.Go(func() error {
		_, err := t.sharepoint.AcquireToken(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fileName, fmt.Errorf("transfer of file %s failed: %w", fileID, err)
	}

	result, err := t.sharepoint.Upload(ctx, fileName, content, docxContentType)
	if err != nil {
		return nil, fileName, fmt.Errorf("transfer of file %s failed: %w", fileID, err)
	}
	return result, fileName, nil
}
