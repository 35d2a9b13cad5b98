package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"dine24/backend/internal/domain"
)

// HTTPTransport posts the email request as JSON to a provider endpoint with
// a bearer key, the shape the mail provider expects:
// {to, subject, html, pdfAttachment?: {filename, content}}.
type HTTPTransport struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPTransport(endpoint string, apiKey string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req domain.EmailRequest) (domain.NotificationReceipt, error) {
	if t.endpoint == "" || t.apiKey == "" {
		return domain.NotificationReceipt{}, &NotificationError{
			Kind: KindConfiguration,
			Err:  fmt.Errorf("mail endpoint or api key not configured"),
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.NotificationReceipt{}, &NotificationError{Kind: KindConfiguration, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.NotificationReceipt{}, &NotificationError{Kind: KindConfiguration, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return domain.NotificationReceipt{}, &NotificationError{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.ID == "" {
			body.ID = "provider-unknown"
		}
		return domain.NotificationReceipt{
			MessageID: body.ID,
			Transport: "http",
			SentAt:    time.Now().UTC(),
		}, nil
	case resp.StatusCode >= 500:
		return domain.NotificationReceipt{}, &NotificationError{
			Kind: KindTransient,
			Err:  fmt.Errorf("mail provider returned status %d", resp.StatusCode),
		}
	default:
		return domain.NotificationReceipt{}, &NotificationError{
			Kind: KindConfiguration,
			Err:  fmt.Errorf("mail provider rejected request with status %d", resp.StatusCode),
		}
	}
}

// LogTransport logs the outbound email instead of sending it. Used in dev
// mode when no mail endpoint is configured.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (LogTransport) Send(_ context.Context, req domain.EmailRequest) (domain.NotificationReceipt, error) {
	attached := "no"
	if req.Attachment != nil {
		attached = req.Attachment.Filename
	}
	log.Printf("[notify] email to=%s subject=%q attachment=%s (log transport, not delivered)", req.To, req.Subject, attached)
	return domain.NotificationReceipt{
		MessageID: uuid.NewString(),
		Transport: "log",
		SentAt:    time.Now().UTC(),
	}, nil
}
