package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNoDocumentFile indicates the downloaded archive contained no
// markup document.
var ErrNoDocumentFile = errors.New("xml file not found")

// FilingDocument downloads the compressed full-text archive for a
// filing and returns the text of its first markup document. Byte
// sequences that are not valid UTF-8 are replaced rather than failing
// the extraction.
func (c *Client) FilingDocument(ctx context.Context, receiptNo string) (string, error) {
	params := url.Values{"rcept_no": {receiptNo}}

	body, err := c.fetch(ctx, "document.xml", params, c.cfg.ListTimeout)
	if err != nil {
		return "", err
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("dart document.xml: open archive: %w", err)
	}

	for _, file := range zr.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".xml") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("dart document.xml: open %s: %w", file.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("dart document.xml: read %s: %w", file.Name, err)
		}
		return strings.ToValidUTF8(string(raw), "�"), nil
	}

	return "", ErrNoDocumentFile
}
