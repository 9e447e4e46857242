package commands

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/db-sync-sheets/errs"
)

const (
	SHEETS = sheets.SpreadsheetsScope
	DRIVE  = drive.DriveScope
)

// authorize loads the service account credentials, preferring the credentials
// file (if it exists) over the base64 encoded credentials.
func authorize(ctx context.Context, file, encoded string) (*google.Credentials, error) {
	b, err := credentialsJSON(file, encoded)
	if err != nil {
		return nil, err
	}

	credentials, err := google.CredentialsFromJSON(ctx, b, SHEETS, DRIVE)
	if err != nil {
		return nil, errs.Wrap(err, errs.Config, "invalid Google credentials")
	}

	return credentials, nil
}

func credentialsJSON(file, encoded string) ([]byte, error) {
	if file = strings.TrimSpace(file); file != "" {
		b, err := os.ReadFile(file)
		switch {
		case err == nil:
			return b, nil

		case !errors.Is(err, fs.ErrNotExist):
			return nil, errs.Wrap(err, errs.Config, fmt.Sprintf("unable to read credentials file %v", file))
		}
	}

	if encoded = strings.TrimSpace(encoded); encoded != "" {
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errs.Wrap(err, errs.Config, "invalid GOOGLE_CREDENTIALS_BASE64")
		}

		return b, nil
	}

	return nil, errs.New(errs.Config, "missing Google credentials - set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS_BASE64")
}
