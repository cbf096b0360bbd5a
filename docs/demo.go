package docs

import (
	"context"

	"github.com/tbxark/formpilot/types"
)

const (
	DemoUploadURL = "https://api.pdf.co/demo/file.pdf"
	DemoFilledURL = "https://api.pdf.co/demo/filled.pdf"
)

var _ Service = (*Demo)(nil)

// Demo answers with canned data. It is used when no API key is configured.
type Demo struct {
	Fields []types.Field
}

func NewDemo() *Demo {
	return &Demo{Fields: []types.Field{
		{Index: 0, Name: "Demo_Field_1", Type: "text"},
		{Index: 1, Name: "Demo_Field_2", Type: "email"},
	}}
}

func (d *Demo) Upload(ctx context.Context, data []byte, filename string) (*Upload, error) {
	return &Upload{URL: DemoUploadURL, Size: int64(len(data)), FileName: filename}, nil
}

func (d *Demo) ExtractFields(ctx context.Context, url string) ([]types.Field, error) {
	return append([]types.Field(nil), d.Fields...), nil
}

func (d *Demo) Fill(ctx context.Context, url string, values map[string]string) (*Filled, error) {
	return &Filled{URL: DemoFilledURL}, nil
}
