package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		doc     *Document
		wantErr bool
	}{
		{
			name: "default document",
			doc:  NewDefaultDocument(now),
		},
		{
			name: "empty maps are objects",
			doc: &Document{
				Classes:  map[string]ClassRecord{"Math": {Students: map[string]StudentRecord{}}},
				Teachers: map[string]string{},
				Settings: Settings{},
			},
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: true,
		},
		{
			name:    "missing classes",
			doc:     &Document{Teachers: map[string]string{}, Settings: Settings{}},
			wantErr: true,
		},
		{
			name:    "missing teachers",
			doc:     &Document{Classes: map[string]ClassRecord{}, Settings: Settings{}},
			wantErr: true,
		},
		{
			name:    "missing settings",
			doc:     &Document{Classes: map[string]ClassRecord{}, Teachers: map[string]string{}},
			wantErr: true,
		},
		{
			name: "class without students",
			doc: &Document{
				Classes:  map[string]ClassRecord{"Math": {}},
				Teachers: map[string]string{},
				Settings: Settings{},
			},
			wantErr: true,
		},
		{
			name: "student without name",
			doc: &Document{
				Classes: map[string]ClassRecord{"Math": {Students: map[string]StudentRecord{
					"s1": {Name: "", Stars: 1},
				}}},
				Teachers: map[string]string{},
				Settings: Settings{},
			},
			wantErr: true,
		},
		{
			name: "negative stars",
			doc: &Document{
				Classes: map[string]ClassRecord{"Math": {Students: map[string]StudentRecord{
					"s1": {Name: "Ada", Stars: -1},
				}}},
				Teachers: map[string]string{},
				Settings: Settings{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				assert.False(t, IsValid(tt.doc))
				return
			}
			assert.NoError(t, err)
			assert.True(t, IsValid(tt.doc))
		})
	}
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "minimal valid",
			payload: `{"classes":{"Math":{"students":{}}},"teachers":{},"settings":{}}`,
		},
		{
			name:    "epoch millisecond timestamps",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada","stars":3,"created":1700000000000}},"created":1700000000000}},"teachers":{"t":"p"},"settings":{}}`,
		},
		{
			name:    "missing teachers and settings",
			payload: `{"classes":{}}`,
			wantErr: true,
		},
		{
			name:    "null teachers",
			payload: `{"classes":{},"teachers":null,"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "string stars",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada","stars":"five"}}}},"teachers":{},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "non-string teacher password",
			payload: `{"classes":{},"teachers":{"t":1},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "missing stars",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada"}}}},"teachers":{},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "null stars",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada","stars":null}}}},"teachers":{},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "null student",
			payload: `{"classes":{"Math":{"students":{"s1":null}}},"teachers":{},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "fractional stars",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada","stars":1.5}}}},"teachers":{},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "null teacher password",
			payload: `{"classes":{},"teachers":{"t":null},"settings":{}}`,
			wantErr: true,
		},
		{
			name:    "zero stars present",
			payload: `{"classes":{"Math":{"students":{"s1":{"name":"Ada","stars":0}}}},"teachers":{"t":""},"settings":{}}`,
		},
		{
			name:    "array root",
			payload: `[]`,
			wantErr: true,
		},
		{
			name:    "null root",
			payload: `null`,
			wantErr: true,
		},
		{
			name:    "garbage",
			payload: `{"classes":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}
