// Package spreadsheet writes tabular backups to Google Sheets.
package spreadsheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer overwrites a range of a spreadsheet with rows of cell values.
type Writer interface {
	Write(ctx context.Context, spreadsheetID, writeRange string, rows [][]any) error
}

// GoogleWriter is a Writer backed by the Sheets v4 API.
type GoogleWriter struct {
	svc *sheets.Service
}

// NewGoogleWriter builds a client. With no options it falls back to
// application default credentials.
func NewGoogleWriter(ctx context.Context, opts ...option.ClientOption) (*GoogleWriter, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleWriter{svc: svc}, nil
}

// CredentialOptions returns the client options for a service account key
// file, or nil to use application default credentials.
func CredentialOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	}
}

// Write replaces the values at writeRange. Cells are stored as given, with
// no formula or date parsing.
func (w *GoogleWriter) Write(ctx context.Context, spreadsheetID, writeRange string, rows [][]any) error {
	_, err := w.svc.Spreadsheets.Values.
		Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s!%s: %w", spreadsheetID, writeRange, err)
	}
	return nil
}
