// Package export writes rendered statements to external targets. The only
// implemented target is a Google Sheets spreadsheet the household shares.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"financas/internal/report"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// StatementWriter is the outbound port for statement export.
type StatementWriter interface {
	// AppendReport appends the report's rows to the target and returns a
	// reference to the written range.
	AppendReport(ctx context.Context, r report.Report) (string, error)
	// WriteStatement replaces the statement text cell-per-line.
	WriteStatement(ctx context.Context, statement string) error
}

// SheetsClient exports to a Google Sheets spreadsheet.
type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ StatementWriter = (*SheetsClient)(nil)

// Config carries the export target and credentials. Credentials come as
// inline JSON or as a file path; inline wins when both are set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// NewSheetsClient creates a Sheets export client.
func NewSheetsClient(ctx context.Context, cfg Config) (*SheetsClient, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Statement"
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing credentials (set inline JSON or a file path)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendReport appends one row per expense line plus subtotal and total
// rows after the current end of the sheet.
func (c *SheetsClient) AppendReport(ctx context.Context, r report.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	var rows [][]any
	for _, g := range r.Groups {
		for _, line := range g.Lines {
			rows = append(rows, []any{
				line.Date.String(),
				line.Members,
				line.Source,
				line.Amount.Euros(),
				line.Notes,
			})
		}
		if g.Label != "" {
			rows = append(rows, []any{"SUBTOTAL " + g.Label, "", "", g.Subtotal.Euros(), ""})
		}
	}
	rows = append(rows, []any{"TOTAL", "", "", r.GrandTotal.Euros(), ""})

	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// WriteStatement overwrites the sheet with the statement, one line per row.
func (c *SheetsClient) WriteStatement(ctx context.Context, statement string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	lines := strings.Split(statement, "\n")
	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{line})
	}

	clearRange := fmt.Sprintf("%s!A:A", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("write statement to sheet %s: %w", c.sheetName, err)
	}
	return nil
}
