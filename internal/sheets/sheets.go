// Package sheets provides range-addressed access to the recruitment record
// spreadsheet: result/status writes and the reverse scan that correlates a
// provider conversation ID back to its row.
package sheets

import (
	"context"
	"fmt"

	"github.com/jonathan/recruit-pipeline/internal/rubric"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client wraps the spreadsheet API for a single spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// New creates a sheets client for the given spreadsheet. Credentials are
// passed as client options (e.g. option.WithCredentialsJSON for a service
// account key).
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	opts = append(opts, option.WithScopes(sheetsapi.SpreadsheetsScope))
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Update writes rows of values to an A1 range using USER_ENTERED input, so
// the sheet interprets values the same way a typing user would.
func (c *Client) Update(ctx context.Context, rangeExpr string, values [][]any) error {
	body := &sheetsapi.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rangeExpr, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", rangeExpr, err)
	}
	return nil
}

// FindRowByConversationID scans the conversation-id column for the given
// provider conversation ID and returns the 1-based sheet row holding it.
// A conversation that was never recorded yields found == false, not an error.
func (c *Client) FindRowByConversationID(ctx context.Context, conversationID string) (int, bool, error) {
	if conversationID == "" {
		return 0, false, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rubric.ConversationIDColumn).
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read conversation column: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && cell == conversationID {
			return rubric.ConversationIDFirstRow + i, true, nil
		}
	}
	return 0, false, nil
}
