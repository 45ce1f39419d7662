//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"relay-lab/domain"
)

// IMessageRepository is the external persistence collaborator. Chat
// messages are written through it before fan-out; everything else the
// relay handles never touches it.
type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
}

// StoredMessage is the wire format shared with the store service.
type StoredMessage struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HTTPMessageRepository writes messages to the room-scoped message
// store over HTTP. A write failure is reported to the caller and goes
// no further: the session stays up, only the broadcast is skipped.
type HTTPMessageRepository struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewHTTPMessageRepository(baseURL string, timeout time.Duration, log *slog.Logger) *HTTPMessageRepository {
	return &HTTPMessageRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (r *HTTPMessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	body, err := json.Marshal(fromDomain(message))
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/rooms/%s/messages", r.baseURL, url.PathEscape(string(message.Room)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("message store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("message store refused write: %s", resp.Status)
	}
	return nil
}

func fromDomain(message domain.Message) StoredMessage {
	return StoredMessage{
		ID:        message.ID.String(),
		Room:      string(message.Room),
		Author:    message.SenderID,
		Content:   message.Content,
		Lang:      message.Lang,
		CreatedAt: message.CreatedAt,
	}
}
