package core

import (
	"fmt"
	"strings"
)

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ImagePart references an image either by URL or by inlined base64 data.
type ImagePart struct {
	URL      string // External retrieval URL (if not inlined)
	Data     string // Base64 encoded contents (if inlined)
	MimeType string // e.g. image/png
}

// isPart implements the Part interface for ImagePart.
func (ImagePart) isPart() {}

// FilePart is a file attachment segment.
type FilePart struct {
	Name     string // Original filename hint
	URI      string // External retrieval URI (if not inlined)
	Bytes    string // Base64 encoded contents (if inlined)
	MimeType string
}

// isPart implements the Part interface for FilePart.
func (FilePart) isPart() {}

// FunctionCall describes a tool/function invocation request.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Optional stable id
	Name      string `json:"name"`                // Tool / function name
	Arguments string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

// isPart implements the Part interface for FunctionCallPart.
func (FunctionCallPart) isPart() {}

// FunctionResponse describes the outcome of a function call.
type FunctionResponse struct {
	ID       string `json:"id,omitempty"`       // Matches originating FunctionCall ID
	Name     string `json:"name"`               // Function name
	Response any    `json:"response,omitempty"` // Successful result (any shape)
	Error    string `json:"error,omitempty"`    // Populated on failure
}

// Text renders the response as the text a model (or arbiter) would read.
func (r FunctionResponse) Text() string {
	if r.Error != "" {
		return "error: " + r.Error
	}
	switch v := r.Response.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

// isPart implements the Part interface for FunctionResponsePart.
func (FunctionResponsePart) isPart() {}

// joinText concatenates all text parts of ps separated by newlines.
func joinText(ps []Part) string {
	var texts []string
	for _, p := range ps {
		if tp, ok := p.(TextPart); ok && tp.Text != "" {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}
