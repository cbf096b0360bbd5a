// Package docs talks to the document-processing service that uploads PDFs,
// extracts their form fields and fills them.
package docs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbxark/formpilot/types"
)

var ErrUpstreamUnavailable = errors.New("document service unavailable")

// UpstreamError describes a failed call to the document service. It matches
// ErrUpstreamUnavailable with errors.Is.
type UpstreamError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

type Upload struct {
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	FileName string `json:"fileName"`
}

type Filled struct {
	URL string `json:"url"`
}

type Service interface {
	Upload(ctx context.Context, data []byte, filename string) (*Upload, error)
	ExtractFields(ctx context.Context, url string) ([]types.Field, error)
	Fill(ctx context.Context, url string, values map[string]string) (*Filled, error)
}
