package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"mapfin/internal/log"
	ports "mapfin/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// sheetAPI is the slice of the Sheets v4 surface the client needs.
type sheetAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Append(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	SheetID(ctx context.Context, spreadsheetID, title string) (int64, error)
	DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, rowIndex int) error
}

// Client maps workbook sheets to collections. Row 1 of every sheet is the
// header; each following row is a record keyed by those headers.
type Client struct {
	api           sheetAPI
	spreadsheetID string
	logger        *log.Logger
}

var errSheetNotFound = errors.New("sheet not found")

// Ensure interface conformance
var _ ports.RowStore = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SHEET_ID (or GOOGLE_SPREADSHEET_ID).
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// GOOGLE_APPLICATION_CREDENTIALS, or the GOOGLE_SERVICE_ACCOUNT_EMAIL and
// GOOGLE_PRIVATE_KEY pair. Without a service account an OAuth client plus
// saved token is used instead.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID"))
	if spreadsheetID == "" {
		spreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	}
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SHEET_ID")
	}
	opts, err := clientOptionsFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	log.WithComponent(log.ComponentSheets).InfoContext(ctx, "Google Sheets service created")
	return New(&serviceAPI{svc: svc}, spreadsheetID), nil
}

func New(api sheetAPI, spreadsheetID string) *Client {
	return &Client{api: api, spreadsheetID: spreadsheetID, logger: log.WithComponent(log.ComponentSheets)}
}

func clientOptionsFromEnv(ctx context.Context) ([]goption.ClientOption, error) {
	creds, saErr := credentialsFromEnv()
	if saErr == nil {
		return []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	}
	hc, err := oauthHTTPClientFromEnv(ctx)
	if errors.Is(err, errNoOAuth) {
		return nil, saErr
	}
	if err != nil {
		return nil, err
	}
	log.WithComponent(log.ComponentSheets).InfoContext(ctx, "Using OAuth user credentials")
	return []goption.ClientOption{goption.WithHTTPClient(hc)}, nil
}

// credentialsFromEnv returns service account JSON. An inline email and key
// pair is turned into the same JSON shape a key file has.
func credentialsFromEnv() ([]byte, error) {
	if j := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); j != "" {
		return []byte(j), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	email := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"))
	key := os.Getenv("GOOGLE_PRIVATE_KEY")
	if email != "" && key != "" {
		// Keys pasted into env files carry literal \n sequences.
		key = strings.ReplaceAll(key, `\n`, "\n")
		return json.Marshal(map[string]string{
			"type":         "service_account",
			"client_email": email,
			"private_key":  key,
			"token_uri":    "https://oauth2.googleapis.com/token",
		})
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_PRIVATE_KEY)")
}

func sheetRange(c ports.Collection, a1 string) string {
	return fmt.Sprintf("%s!%s", c, a1)
}

func (c *Client) header(ctx context.Context, col ports.Collection) ([]string, error) {
	values, err := c.api.Get(ctx, c.spreadsheetID, sheetRange(col, "1:1"))
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", col, err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return toStrings(values[0]), nil
}

func (c *Client) FetchAll(ctx context.Context, col ports.Collection) ([]ports.Row, error) {
	values, err := c.api.Get(ctx, c.spreadsheetID, sheetRange(col, "A:Z"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", col, err)
	}
	return rowsFromValues(values), nil
}

func (c *Client) Insert(ctx context.Context, col ports.Collection, row ports.Row) (ports.Row, error) {
	header, err := c.header(ctx, col)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", col)
	}
	row = ports.PrepareInsert(col, row)
	if err := c.api.Append(ctx, c.spreadsheetID, sheetRange(col, "A:Z"), [][]any{toAny(ports.Values(header, row))}); err != nil {
		return nil, fmt.Errorf("append to %s: %w", col, err)
	}
	c.logger.DebugContext(ctx, "Row appended", log.FieldCollection, string(col), log.FieldRecordID, row.ID())
	return row, nil
}

// locate returns the header and the 1-based sheet row of id.
func (c *Client) locate(ctx context.Context, col ports.Collection, id string) ([]string, int, error) {
	values, err := c.api.Get(ctx, c.spreadsheetID, sheetRange(col, "A:Z"))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", col, err)
	}
	if len(values) == 0 {
		return nil, 0, ports.ErrNotFound
	}
	header := toStrings(values[0])
	idx := findRow(values, id)
	if idx < 0 {
		return nil, 0, ports.ErrNotFound
	}
	return header, idx + 1, nil
}

func (c *Client) Update(ctx context.Context, col ports.Collection, id string, row ports.Row) (ports.Row, error) {
	header, rowNum, err := c.locate(ctx, col, id)
	if err != nil {
		return nil, err
	}
	row = ports.PrepareUpdate(id, row)
	rng := sheetRange(col, fmt.Sprintf("A%d:%s%d", rowNum, columnLetter(len(header)), rowNum))
	if err := c.api.Update(ctx, c.spreadsheetID, rng, [][]any{toAny(ports.Values(header, row))}); err != nil {
		return nil, fmt.Errorf("update %s: %w", rng, err)
	}
	return row, nil
}

func (c *Client) Delete(ctx context.Context, col ports.Collection, id string) error {
	sheetID, err := c.api.SheetID(ctx, c.spreadsheetID, string(col))
	if err != nil {
		if errors.Is(err, errSheetNotFound) {
			return fmt.Errorf("%w: %s", ports.ErrUnknownCollection, col)
		}
		return fmt.Errorf("spreadsheet metadata: %w", err)
	}
	_, rowNum, err := c.locate(ctx, col, id)
	if err != nil {
		return err
	}
	if err := c.api.DeleteRow(ctx, c.spreadsheetID, sheetID, rowNum-1); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", rowNum, col, err)
	}
	return nil
}

// serviceAPI adapts *gsheet.Service to sheetAPI.
type serviceAPI struct {
	svc *gsheet.Service
}

func (s *serviceAPI) Get(ctx context.Context, id, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(id, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceAPI) Append(ctx context.Context, id, rng string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Append(id, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceAPI) Update(ctx context.Context, id, rng string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(id, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceAPI) SheetID(ctx context.Context, id, title string) (int64, error) {
	ss, err := s.svc.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, errSheetNotFound
}

func (s *serviceAPI) DeleteRow(ctx context.Context, id string, sheetID int64, rowIndex int) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	_, err := s.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
	return err
}
