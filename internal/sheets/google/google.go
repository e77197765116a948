package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var (
	_ ports.Mirror          = (*Client)(nil)
	_ ports.LayoutRefresher = (*Client)(nil)
)

// New creates a Sheets mirror authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", cfg.CredentialsFile, "size", len(b))
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	jwtCfg, err := googleoauth.JWTConfigFromJSON(credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	// Token requests and API calls share the pooled transport. The token
	// source outlives ctx's cancellation.
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, newHTTPClientWithPooling())
	slog.InfoContext(ctx, "Using service account", "email", jwtCfg.Email)

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(jwtCfg.Client(tokenCtx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// EnsureLayout creates any missing kind tab with its header row and refreshes
// the cached tab ids.
func (c *Client) EnsureLayout(ctx context.Context) error {
	ids, err := c.loadSheetIDs(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for _, k := range core.Kinds() {
		if _, ok := ids[ports.TabName(k)]; !ok {
			missing = append(missing, ports.TabName(k))
		}
	}
	if len(missing) == 0 {
		return nil
	}

	reqs := make([]*gsheet.Request, 0, len(missing))
	for _, title := range missing {
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		})
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID,
		&gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tabs %v: %w", missing, err)
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	for _, title := range missing {
		rng := fmt.Sprintf("%s!A1", title)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]any{header}}).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header to %s: %w", title, err)
		}
	}
	slog.InfoContext(ctx, "Created mirror tabs", "tabs", missing)

	_, err = c.loadSheetIDs(ctx)
	return err
}

func (c *Client) loadSheetIDs(ctx context.Context) (map[string]int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	ids := make(map[string]int64, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	c.mu.Lock()
	c.sheetIDs = ids
	c.mu.Unlock()
	return ids, nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}
	ids, err := c.loadSheetIDs(ctx)
	if err != nil {
		return 0, err
	}
	id, ok = ids[title]
	if !ok {
		return 0, fmt.Errorf("tab %q not found", title)
	}
	return id, nil
}

func (c *Client) readIDs(ctx context.Context, tab string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, tab+"!A:A").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids from %s: %w", tab, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = fmt.Sprint(row[0])
		}
	}
	return out, nil
}

func (c *Client) AppendTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	tab := ports.TabName(tx.Kind)

	ids, err := c.readIDs(ctx, tab)
	if err != nil {
		return err
	}
	if findRow(ids, tx.ID) >= 0 {
		slog.DebugContext(ctx, "Transaction already mirrored", "id", tx.ID, "tab", tab)
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A:F",
		&gsheet.ValueRange{Values: [][]any{toRow(tx)}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	return nil
}

func (c *Client) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	tab := ports.TabName(kind)
	ids, err := c.readIDs(ctx, tab)
	if err != nil {
		return err
	}
	row := findRow(ids, id)
	if row < 0 {
		slog.DebugContext(ctx, "Transaction not present in mirror", "id", id, "tab", tab)
		return nil
	}

	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row),
			EndIndex:   int64(row) + 1,
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", row, tab, err)
	}
	return nil
}

func toRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Owner,
		tx.Title,
		tx.Amount.Float64(),
		tx.Category,
		tx.Date.UTC().Format(core.DayLayout),
	}
}

// findRow returns the zero-based row index holding id, skipping the header.
func findRow(ids []string, id string) int {
	for i, v := range ids {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(v) == id {
			return i
		}
	}
	return -1
}
