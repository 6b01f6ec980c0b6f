package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DocumentVersion is stamped into metadata on every save.
const DocumentVersion = "2.0"

// Document is the single persisted aggregate: every class, teacher and setting.
type Document struct {
	Classes  map[string]ClassRecord `json:"classes"`
	Teachers map[string]string      `json:"teachers"`
	Settings Settings               `json:"settings"`
	Metadata Metadata               `json:"metadata"`
}

// ClassRecord holds the students of one class keyed by generated student id.
type ClassRecord struct {
	Students    map[string]StudentRecord `json:"students"`
	Created     Timestamp                `json:"created"`
	Description string                   `json:"description,omitempty"`
}

// StudentRecord is a single student and their star count.
type StudentRecord struct {
	Name    string    `json:"name"`
	Stars   int       `json:"stars"`
	Created Timestamp `json:"created"`
}

// Metadata is stamped by the sync orchestrator on every successful save.
type Metadata struct {
	Version      string    `json:"version"`
	Created      Timestamp `json:"created"`
	LastModified Timestamp `json:"lastModified"`
	BackupCount  int       `json:"backupCount"`
}

// Timestamp is a time encoded as an RFC 3339 string. Decoding also accepts
// epoch milliseconds and null, which older documents contain.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return fmt.Errorf("invalid timestamp %q", s)
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	t.Time = time.UnixMilli(int64(ms))
	return nil
}

// Stamp applies the write-protocol metadata update: lastModified, version
// and an incremented backup count.
func (d *Document) Stamp(now time.Time) {
	if d.Metadata.Created.IsZero() {
		d.Metadata.Created = NewTimestamp(now)
	}
	d.Metadata.LastModified = NewTimestamp(now)
	d.Metadata.Version = DocumentVersion
	d.Metadata.BackupCount++
}

// Marshal encodes the document as compact JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses data and runs the schema validator over the result.
// Any payload that cannot be decoded into the document shape is reported as
// ErrInvalidDocument.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := checkRequiredFields(data); err != nil {
		return nil, err
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// rawDocument keeps the fields that decode to a zero value when missing or
// null, so their presence can be checked.
type rawDocument struct {
	Classes map[string]struct {
		Students map[string]map[string]json.RawMessage `json:"students"`
	} `json:"classes"`
	Teachers map[string]json.RawMessage `json:"teachers"`
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func checkRequiredFields(data []byte) error {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	for className, class := range raw.Classes {
		for id, student := range class.Students {
			if student == nil {
				return fmt.Errorf("%w: class %q: student %q must be an object", ErrInvalidDocument, className, id)
			}
			if isNull(student["stars"]) {
				return fmt.Errorf("%w: class %q: student %q has no stars", ErrInvalidDocument, className, id)
			}
			if isNull(student["name"]) {
				return fmt.Errorf("%w: class %q: student %q has no name", ErrInvalidDocument, className, id)
			}
		}
	}
	for username, credential := range raw.Teachers {
		if isNull(credential) {
			return fmt.Errorf("%w: teacher %q has no password", ErrInvalidDocument, username)
		}
	}
	return nil
}
