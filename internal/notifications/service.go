package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"pausetrim/internal/config"
)

const userAgent = "Pausetrim-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyJobQueued(ctx context.Context, sourcePath string) error
	NotifyAnalysisComplete(ctx context.Context, sourcePath string, silenceCount int) error
	NotifyRenderCompleted(ctx context.Context, sourcePath string) error
	NotifyJobCompleted(ctx context.Context, sourcePath, finalFile string) error
	NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobQueued(ctx context.Context, sourcePath string) error {
	data := payload{
		title:   "Pausetrim - Queued",
		message: fmt.Sprintf("Queued: %s", filepath.Base(sourcePath)),
		tags:    []string{"pausetrim", "queue", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisComplete(ctx context.Context, sourcePath string, silenceCount int) error {
	data := payload{
		title:   "Pausetrim - Analyzed",
		message: fmt.Sprintf("Found %d long pauses in %s", silenceCount, filepath.Base(sourcePath)),
		tags:    []string{"pausetrim", "analyze", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, sourcePath string) error {
	data := payload{
		title:   "Pausetrim - Rendered",
		message: fmt.Sprintf("Render complete: %s", filepath.Base(sourcePath)),
		tags:    []string{"pausetrim", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, sourcePath, finalFile string) error {
	message := fmt.Sprintf("Edit complete: %s", filepath.Base(sourcePath))
	if finalFile = strings.TrimSpace(finalFile); finalFile != "" {
		message = fmt.Sprintf("%s\nOutput: %s", message, finalFile)
	}
	data := payload{
		title:    "Pausetrim - Complete",
		message:  message,
		tags:     []string{"pausetrim", "job", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Pausetrim - Batch Complete"
		message = fmt.Sprintf("Batch complete: %d items processed in %s", processed, durationText)
	} else {
		title = "Pausetrim - Batch Complete (with errors)"
		message = fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"pausetrim", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Pausetrim - Error",
		message:  builder.String(),
		tags:     []string{"pausetrim", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Pausetrim - Test",
		message:  "Notification system test",
		tags:     []string{"pausetrim", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobQueued(context.Context, string) error                       { return nil }
func (noopService) NotifyAnalysisComplete(context.Context, string, int) error           { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string) error                 { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, string) error            { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
