package core

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// Decoder validates and decodes base64 file payloads into attachments.
// Uploads are single-shot: one complete encoded payload per file, no
// streaming or partial reassembly.
type Decoder struct {
	maxBytes int64
}

// NewDecoder builds a decoder rejecting payloads that decode to more than
// maxBytes.
func NewDecoder(maxBytes int64) *Decoder {
	return &Decoder{maxBytes: maxBytes}
}

// Decode validates filename and payload and returns the decoded bytes.
// The payload may still carry a data-URL prefix ("data:*;base64,..."); it
// is stripped before decoding. The returned attachment has no sender, room
// or timestamp; the hub fills those in at dispatch time.
func (d *Decoder) Decode(filename, payload string) (*Attachment, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return nil, ErrBadFilename
	}
	// Reject anything path-traversal-significant rather than sanitizing it.
	// Inner dots are fine ("report..v2.pdf"); separators and dot components
	// are not.
	if name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return nil, ErrBadFilename
	}

	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > d.maxBytes+2 {
		return nil, ErrTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if int64(len(data)) > d.maxBytes {
		return nil, ErrTooLarge
	}

	return &Attachment{
		Filename: name,
		Data:     data,
		Size:     int64(len(data)),
	}, nil
}
