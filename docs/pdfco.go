package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/formpilot/types"
)

const (
	DefaultPDFCoBaseURL = "https://api.pdf.co/v1"
	defaultTimeout      = 30 * time.Second
)

var _ Service = (*PDFCo)(nil)

// PDFCo is a Service backed by the PDF.co HTTP API.
type PDFCo struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type PDFCoOption func(*PDFCo)

func WithHTTPClient(client *http.Client) PDFCoOption {
	return func(p *PDFCo) {
		p.client = client
	}
}

func NewPDFCo(apiKey, baseURL string, opts ...PDFCoOption) *PDFCo {
	if baseURL == "" {
		baseURL = DefaultPDFCoBaseURL
	}
	p := &PDFCo{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// apiStatus is the envelope every PDF.co response carries.
type apiStatus struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type uploadResponse struct {
	apiStatus
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type fieldsResponse struct {
	apiStatus
	Info struct {
		FieldsInfo struct {
			Fields []Record `json:"Fields"`
		} `json:"FieldsInfo"`
		Fields []Record `json:"fields"`
	} `json:"info"`
	Fields []Record `json:"fields"`
}

func (r *fieldsResponse) records() []Record {
	switch {
	case len(r.Info.FieldsInfo.Fields) > 0:
		return r.Info.FieldsInfo.Fields
	case len(r.Info.Fields) > 0:
		return r.Info.Fields
	default:
		return r.Fields
	}
}

type fillField struct {
	FieldName string `json:"fieldName"`
	Text      string `json:"text"`
}

type fillRequest struct {
	URL    string      `json:"url"`
	Fields []fillField `json:"fields"`
	Async  bool        `json:"async"`
	Inline bool        `json:"inline"`
}

type fillResponse struct {
	apiStatus
	URL string `json:"url"`
}

func (p *PDFCo) Upload(ctx context.Context, data []byte, filename string) (*Upload, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}

	var resp uploadResponse
	if err := p.do(ctx, "upload", "/file/upload", w.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	if resp.URL == "" {
		return nil, &UpstreamError{Op: "upload", Message: "no url in response"}
	}
	size := resp.Size
	if size == 0 {
		size = int64(len(data))
	}
	slog.Debug("pdf uploaded", "file", filename, "url", resp.URL, "size", size)
	return &Upload{URL: resp.URL, Size: size, FileName: filename}, nil
}

func (p *PDFCo) ExtractFields(ctx context.Context, url string) ([]types.Field, error) {
	payload, err := sonic.Marshal(map[string]any{"url": url, "async": false})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extract request: %w", err)
	}
	var resp fieldsResponse
	if err := p.do(ctx, "extract fields", "/pdf/info/fields", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	records := resp.records()
	fields := NormalizeFields(records)
	slog.Debug("pdf fields extracted", "url", url, "records", len(records), "fields", len(fields))
	return fields, nil
}

func (p *PDFCo) Fill(ctx context.Context, url string, values map[string]string) (*Filled, error) {
	req := fillRequest{URL: url, Fields: make([]fillField, 0, len(values)), Inline: true}
	for name, text := range values {
		req.Fields = append(req.Fields, fillField{FieldName: name, Text: text})
	}
	sort.Slice(req.Fields, func(i, j int) bool {
		return req.Fields[i].FieldName < req.Fields[j].FieldName
	})
	payload, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fill request: %w", err)
	}
	var resp fillResponse
	if err := p.do(ctx, "fill", "/pdf/edit/add", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	if resp.URL == "" {
		return nil, &UpstreamError{Op: "fill", Message: "no url in response"}
	}
	slog.Debug("pdf filled", "url", resp.URL, "fields", len(req.Fields))
	return &Filled{URL: resp.URL}, nil
}

// do posts body to path and decodes the response into out, which must embed
// apiStatus.
func (p *PDFCo) do(ctx context.Context, op, path, contentType string, body io.Reader, out interface{ status() apiStatus }) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-key", p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &UpstreamError{Op: op, StatusCode: res.StatusCode, Err: err}
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		if res.StatusCode >= http.StatusBadRequest {
			return &UpstreamError{Op: op, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(data))}
		}
		return &UpstreamError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	st := out.status()
	if res.StatusCode >= http.StatusBadRequest || st.Error {
		msg := st.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &UpstreamError{Op: op, StatusCode: res.StatusCode, Message: msg}
	}
	return nil
}

func (s apiStatus) status() apiStatus { return s }
