package identify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"depotscan/internal/domain"
)

// NotFoundSentinel is the service's marker for an unidentifiable item.
const NotFoundSentinel = "Not Found"

const maxErrorBodyBytes = 64 << 10

// Config controls the identification endpoint client.
type Config struct {
	EndpointURL string
	FieldName   string
}

// Client submits images to the identification endpoint. It performs no
// retries and sets no timeout of its own; callers bound requests through
// the context.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.FieldName == "" {
		cfg.FieldName = "image"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Identify posts the image as multipart form data and maps the response
// into a typed identification result.
func (c *Client) Identify(ctx context.Context, image domain.ImagePayload) (domain.Identification, error) {
	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("mime_type", image.MimeType),
		zap.Int("size_bytes", len(image.Bytes)),
	)

	body, contentType, err := encodeMultipart(c.cfg.FieldName, image)
	if err != nil {
		return domain.Identification{}, &ProtocolError{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EndpointURL, body)
	if err != nil {
		return domain.Identification{}, &ProtocolError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", requestID)

	logger.Info("submitting image for identification")
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("identification request failed", zap.Error(err))
		return domain.Identification{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		logger.Warn("identification endpoint returned error status",
			zap.Int("status", resp.StatusCode))
		return domain.Identification{}, &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	result, err := decodeResponse(resp.Body)
	if err != nil {
		logger.Warn("identification response unusable", zap.Error(err))
		return domain.Identification{}, err
	}

	logger.Info("identification complete",
		zap.String("outcome", string(result.Outcome)),
		zap.String("item", result.Item.Name),
		zap.Duration("elapsed", time.Since(started)))
	return result, nil
}

// uploadResponse mirrors the endpoint's JSON body.
type uploadResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	Identification *struct {
		IdentifiedItem string   `json:"identified_item"`
		ItemType       string   `json:"item_type"`
		Confidence     string   `json:"confidence"`
		KeyFeatures    []string `json:"key_features"`
		Notes          string   `json:"notes"`
	} `json:"identification"`
	ItemInInventory bool    `json:"item_in_inventory"`
	ProductURL      *string `json:"product_url"`
	ImageData       string  `json:"image_data"`
}

func decodeResponse(r io.Reader) (domain.Identification, error) {
	var parsed uploadResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return domain.Identification{}, &ProtocolError{Op: "decode response", Err: err}
	}

	if !parsed.Success {
		message := strings.TrimSpace(parsed.Error)
		if message == "" {
			message = "identification service reported failure"
		}
		return domain.Identification{}, &ApplicationError{Message: message}
	}

	// A success body without the identification block is a contract
	// violation, never a "not found".
	if parsed.Identification == nil {
		return domain.Identification{}, &ProtocolError{Op: "decode response", Err: errors.New("missing identification block")}
	}

	ident := parsed.Identification
	item := domain.ItemDescriptor{
		Name:        ident.IdentifiedItem,
		Type:        ident.ItemType,
		Confidence:  parseConfidence(ident.Confidence),
		KeyFeatures: ident.KeyFeatures,
		Notes:       ident.Notes,
	}

	if strings.EqualFold(ident.IdentifiedItem, NotFoundSentinel) {
		return domain.Identification{
			Outcome:   domain.OutcomeNotFound,
			Notes:     ident.Notes,
			ImageData: parsed.ImageData,
		}, nil
	}

	productURL := ""
	if parsed.ProductURL != nil {
		productURL = strings.TrimSpace(*parsed.ProductURL)
	}
	if parsed.ItemInInventory {
		return domain.Identification{
			Outcome:    domain.OutcomeInInventory,
			Item:       item,
			ProductURL: productURL,
			ImageData:  parsed.ImageData,
		}, nil
	}
	return domain.Identification{
		Outcome:   domain.OutcomeNoInventory,
		Item:      item,
		ImageData: parsed.ImageData,
	}, nil
}

func parseConfidence(value string) domain.Confidence {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return domain.ConfidenceHigh
	case "medium":
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func encodeMultipart(field string, image domain.ImagePayload) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileNameFor(image.MimeType)))
	header.Set("Content-Type", image.MimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Bytes); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

func fileNameFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "capture.png"
	case "image/gif":
		return "capture.gif"
	case "image/webp":
		return "capture.webp"
	default:
		return "capture.jpg"
	}
}
