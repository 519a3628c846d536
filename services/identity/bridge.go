package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// StoreRequest is the remote identity credential persisted back to the host
// platform after a successful login.
type StoreRequest struct {
	UserID   int    `json:"user_id"`
	Token    string `json:"token"`
	FullName string `json:"full_name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Bridge links a host-platform user to a remote identity. Its failures are
// logged by the caller and never block the wizard.
type Bridge interface {
	StoreRemoteIdentity(ctx context.Context, req StoreRequest) error
}

// AjaxBridge posts the credential over the host platform's generic
// action-dispatch channel, the same way the widget's host does.
type AjaxBridge struct {
	ajaxURL string
	client  *http.Client
}

func NewAjaxBridge(ajaxURL string) *AjaxBridge {
	return &AjaxBridge{
		ajaxURL: ajaxURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *AjaxBridge) StoreRemoteIdentity(ctx context.Context, req StoreRequest) error {
	if b.ajaxURL == "" {
		return fmt.Errorf("bridge: ajax url not configured")
	}
	form := url.Values{}
	form.Set("action", "fitbuds_store_user_id")
	form.Set("user_id", strconv.Itoa(req.UserID))
	form.Set("token", req.Token)
	if req.FullName != "" {
		form.Set("full_name", req.FullName)
	}
	if req.Mobile != "" {
		form.Set("mobile", req.Mobile)
	}
	if req.Email != "" {
		form.Set("email", req.Email)
	}
	if req.Password != "" {
		form.Set("password", req.Password)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.ajaxURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bridge: host platform returned status %d", resp.StatusCode)
	}
	return nil
}

// TypeBridgeStore is the asynq task type for deferred credential storage.
const TypeBridgeStore = "bridge:store"

// QueueBridge enqueues the credential store as a background task so the
// wizard never waits on the host platform.
type QueueBridge struct {
	client *asynq.Client
}

func NewQueueBridge(client *asynq.Client) *QueueBridge {
	return &QueueBridge{client: client}
}

func (q *QueueBridge) StoreRemoteIdentity(ctx context.Context, req StoreRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bridge: marshal task: %w", err)
	}
	task := asynq.NewTask(TypeBridgeStore, payload)
	if _, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("bridge: enqueue: %w", err)
	}
	return nil
}
