package cache

import (
	"github.com/dtroode/starboard/internal/model"
)

// Well-known cache keys.
const (
	DocumentKey = "starboardData"
	SessionKey  = "starboardSession"
)

var _ model.FastCache = (*Documents)(nil)

// Documents stores the document under DocumentKey. Entries that do not
// decode or validate are reported as absent.
type Documents struct {
	file *File
}

func NewDocuments(file *File) *Documents {
	return &Documents{file: file}
}

func (d *Documents) Get() (*model.Document, bool) {
	raw, ok := d.file.Get(DocumentKey)
	if !ok {
		return nil, false
	}
	doc, err := model.DecodeDocument([]byte(raw))
	if err != nil {
		return nil, false
	}
	return doc, true
}

func (d *Documents) Set(doc *model.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return d.file.Set(DocumentKey, string(data))
}
