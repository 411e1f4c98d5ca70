package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// google sheets refuses cells longer than this
const sheetCellMaxChars = 50000

var (
	ErrDocumentTooLarge    = errors.New("user db document exceeds the spreadsheet cell limit")
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
)

var _ Backend = (*SheetsBackend)(nil)

type SheetsParams struct {
	SpreadsheetID string
	// SpreadsheetName is used to look the spreadsheet up on drive when no id is set.
	SpreadsheetName string
	// Cell in A1 notation, optionally prefixed with the sheet name ("Sheet1!A1").
	Cell string
}

// SheetsBackend keeps the user database in a single spreadsheet cell.
type SheetsBackend struct {
	sheets *sheets.Service
	drive  *drive.Service
	params SheetsParams

	mutex         sync.Mutex
	spreadsheetID string
}

// NewGoogleServices creates sheets and drive clients authorized with the
// service account credentials json.
func NewGoogleServices(ctx context.Context, credentialsJSON []byte, httpClient *http.Client) (*sheets.Service, *drive.Service, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON,
		sheets.SpreadsheetsScope,
		drive.DriveScope,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("parse google credentials: %w", err)
	}

	if httpClient != nil {
		// the oauth2 transport wraps the (traced) base client
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	client := jwtConfig.Client(ctx)

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, nil, fmt.Errorf("create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, nil, fmt.Errorf("create drive service: %w", err)
	}

	return sheetsService, driveService, nil
}

func NewSheetsBackend(sheetsService *sheets.Service, driveService *drive.Service, params SheetsParams) *SheetsBackend {
	if params.Cell == "" {
		params.Cell = "A1"
	}
	return &SheetsBackend{
		sheets:        sheetsService,
		drive:         driveService,
		params:        params,
		spreadsheetID: params.SpreadsheetID,
	}
}

func (b *SheetsBackend) Name() string {
	return "sheets"
}

func (b *SheetsBackend) Load(ctx context.Context) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sheets.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	spreadsheetID, err := b.resolveSpreadsheetID(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("spreadsheet", spreadsheetID))

	resp, err := b.sheets.Spreadsheets.Values.
		Get(spreadsheetID, b.params.Cell).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get cell %s: %w", b.params.Cell, err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		log.Debugf("sheets backend: cell %s is empty", b.params.Cell)
		return nil, nil
	}

	switch v := resp.Values[0][0].(type) {
	case string:
		return []byte(v), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

func (b *SheetsBackend) Save(ctx context.Context, doc []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sheets.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if chars := utf8.RuneCount(doc); chars > sheetCellMaxChars {
		return fmt.Errorf("%w: %d chars", ErrDocumentTooLarge, chars)
	}

	spreadsheetID, err := b.resolveSpreadsheetID(ctx)
	if err != nil {
		return err
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{string(doc)}},
	}
	_, err = b.sheets.Spreadsheets.Values.
		Update(spreadsheetID, b.params.Cell, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update cell %s: %w", b.params.Cell, err)
	}

	return nil
}

func (b *SheetsBackend) resolveSpreadsheetID(ctx context.Context) (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.spreadsheetID != "" {
		return b.spreadsheetID, nil
	}
	if b.drive == nil || b.params.SpreadsheetName == "" {
		return "", ErrSpreadsheetNotFound
	}

	query := fmt.Sprintf(
		"mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false and name = '%s'",
		strings.ReplaceAll(b.params.SpreadsheetName, "'", `\'`),
	)
	files, err := b.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("find spreadsheet %s: %w", b.params.SpreadsheetName, err)
	}

	switch len(files.Files) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, b.params.SpreadsheetName)
	case 1:
		log.Debugf("spreadsheet %s found: %s", b.params.SpreadsheetName, files.Files[0].Id)
	default:
		log.Warnf("found %d spreadsheets named %s, will take the first one: %s",
			len(files.Files), b.params.SpreadsheetName, files.Files[0].Id)
	}

	b.spreadsheetID = files.Files[0].Id
	return b.spreadsheetID, nil
}
