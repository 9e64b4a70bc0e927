package sheets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/vedang2003/tax-calculator-form/internal/leads"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

// headerRow is written once when the first worksheet is empty.
var headerRow = []string{"Timestamp", "Full Name", "Email", "Phone", "State", "District"}

// Client appends lead rows to the first worksheet of a Google spreadsheet.
// The connection is established lazily on first use; a failed connect leaves
// the client disconnected and the next call retries from scratch.
type Client struct {
	mu        sync.Mutex
	svc       *gsheets.Service
	worksheet string

	spreadsheetID  string
	credentialsB64 string
	logger         *logging.Logger
}

// NewClient creates a sheets client for the given spreadsheet. credentialsB64
// is a base64-encoded service-account JSON document.
func NewClient(spreadsheetID, credentialsB64 string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		spreadsheetID:  spreadsheetID,
		credentialsB64: credentialsB64,
		logger:         logger,
	}
}

// Append adds the lead as the last row of the first worksheet, writing the
// header row first when the sheet is empty. One attempt per call, no retry;
// the caller decides whether to re-invoke.
func (c *Client) Append(ctx context.Context, lead *leads.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		c.logger.Error("failed to connect to google sheets", "error", err)
		return err
	}

	if err := c.ensureHeader(ctx); err != nil {
		c.logger.Error("failed to prepare sheet header", "error", err)
		return err
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{rowValues(lead.SheetsRow())}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rangeRef("A:F"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Error("failed to append lead to google sheets", "error", err, "email", lead.Email)
		return fmt.Errorf("sheets: append row: %w", err)
	}

	c.logger.Info("added lead to google sheets", "email", lead.Email)
	return nil
}

// ensureConnected builds the authenticated service and resolves the first
// worksheet title. Any failure leaves svc nil so the next call reconnects.
func (c *Client) ensureConnected(ctx context.Context) error {
	if c.svc != nil {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(c.credentialsB64)
	if err != nil {
		return fmt.Errorf("sheets: decode credentials: %w", err)
	}
	if !json.Valid(raw) {
		return fmt.Errorf("sheets: credentials are not valid JSON")
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(raw),
		option.WithScopes(gsheets.SpreadsheetsScope, gsheets.DriveScope),
	)
	if err != nil {
		return fmt.Errorf("sheets: build service: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: open spreadsheet %s: %w", c.spreadsheetID, err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return fmt.Errorf("sheets: spreadsheet %s has no worksheets", c.spreadsheetID)
	}

	c.svc = svc
	c.worksheet = meta.Sheets[0].Properties.Title
	c.logger.Info("connected to google sheets", "spreadsheet_id", c.spreadsheetID, "worksheet", c.worksheet)
	return nil
}

func (c *Client) ensureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeRef("A1:F1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: read header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{rowValues(headerRow)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeRef("A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write header: %w", err)
	}
	c.logger.Info("added header row to empty sheet", "spreadsheet_id", c.spreadsheetID)
	return nil
}

// rangeRef qualifies a cell range with the quoted worksheet title.
func (c *Client) rangeRef(cells string) string {
	return "'" + strings.ReplaceAll(c.worksheet, "'", "''") + "'!" + cells
}

func rowValues(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return values
}
