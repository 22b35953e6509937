package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets appends audit rows to a Google spreadsheet, one tab per local date.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	loc           *time.Location

	mu   sync.Mutex
	tabs map[string]bool
}

// NewSheets authenticates with a base64-encoded service-account JSON key.
func NewSheets(ctx context.Context, spreadsheetID, credentialsB64 string, loc *time.Location) (*Sheets, error) {
	credentials, err := base64.StdEncoding.DecodeString(credentialsB64)
	if err != nil {
		return nil, fmt.Errorf("sheets: decode credentials: %w", err)
	}
	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Sheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		loc:           loc,
		tabs:          make(map[string]bool),
	}, nil
}

// Append implements Recorder.
func (s *Sheets) Append(ctx context.Context, entry Entry) error {
	tab := PartitionName(entry.At, s.loc)
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}
	return s.appendRow(ctx, tab, Row(entry, s.loc))
}

func (s *Sheets) ensureTab(ctx context.Context, tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tabs[tab] {
		return nil
	}

	spreadsheet, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: load spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			s.tabs[tab] = true
			return nil
		}
	}

	add := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: tab,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: int64(len(Header)),
					},
				},
			},
		}},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, add).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: add tab %s: %w", tab, err)
	}
	if err := s.appendRow(ctx, tab, Header); err != nil {
		return err
	}
	s.tabs[tab] = true
	return nil
}

func (s *Sheets) appendRow(ctx context.Context, tab string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, fmt.Sprintf("'%s'!A1", tab), &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %s: %w", tab, err)
	}
	return nil
}
