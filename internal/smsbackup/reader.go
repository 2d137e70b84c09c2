// Package smsbackup reads the XML archives written by Android SMS backup
// apps into raw messages.
package smsbackup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

// ErrInvalidBackup is returned when the archive is not an SMS backup.
var ErrInvalidBackup = errors.New("invalid sms backup")

// Message types as recorded by Android.
const (
	typeInbox = 1
)

type smsElement struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
	Type    int    `xml:"type,attr"`
}

// ReadFile reads the backup at path.
func ReadFile(path string) ([]model.RawMessage, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open sms backup: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read decodes a backup stream. Only received messages are returned, oldest
// first as stored, with exact duplicates dropped.
func Read(r io.Reader) ([]model.RawMessage, error) {
	dec := xml.NewDecoder(r)

	var (
		messages []model.RawMessage
		sawRoot  bool
		skipped  int
	)
	seen := make(map[string]bool)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "smses":
			sawRoot = true
		case "sms":
			var el smsElement
			if err := dec.DecodeElement(&el, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
			}
			if el.Type != typeInbox || strings.TrimSpace(el.Body) == "" {
				continue
			}

			key := el.Date + "\x00" + el.Address + "\x00" + el.Body
			if seen[key] {
				skipped++
				continue
			}
			seen[key] = true

			messages = append(messages, model.RawMessage{
				Text:       el.Body,
				Sender:     el.Address,
				Source:     model.SourceSMS,
				ReceivedAt: parseMillis(el.Date),
			})
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: missing <smses> root", ErrInvalidBackup)
	}

	common.LogDebug("Read sms backup", common.Fields{"messages": len(messages), "duplicates": skipped})
	return messages, nil
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
