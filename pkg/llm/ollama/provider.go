package ollama

import (
	"apin-chat/internal/constant"
	"apin-chat/pkg/llm"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultPullRetryAfter is how long a failed auto-pull is reported before the next probe retries it.
const DefaultPullRetryAfter = 5 * time.Minute

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	AutoPull  bool
	Client    *http.Client

	// PullRetryAfter holds back automatic pulls after a failure.
	PullRetryAfter time.Duration

	pulling     atomic.Bool
	pullFailure atomic.Pointer[pullFailure]
	now         func() time.Time
}

type pullFailure struct {
	message string
	at      time.Time
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
		PullRetryAfter: DefaultPullRetryAfter,
		now:            time.Now,
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaPullResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = constant.ChatMessageRoleAssistant
		}
		ollamaMessages[i] = ollamaMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	// 3. Prepare Payload
	reqPayload := ollamaChatRequest{
		Model:    o.ModelName,
		Messages: ollamaMessages,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}

	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	var ollamaResp ollamaChatResponse
	if err := o.postJSON(ctx, constant.OllamaChatEndpoint, reqPayload, &ollamaResp); err != nil {
		return "", err
	}

	return ollamaResp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return o.Chat(ctx, []llm.Message{{Role: constant.ChatMessageRoleUser, Content: prompt}}, opts...)
}

// Availability probes the local server and checks the configured model is installed.
// A missing model triggers a background pull when AutoPull is set. A failed pull is
// reported as such until PullRetryAfter has passed or StartPull is called again.
func (o *OllamaProvider) Availability(ctx context.Context) llm.Availability {
	if o.isLocal() && !supportedPlatform(runtime.GOOS, runtime.GOARCH) {
		return llm.Unavailable(llm.ReasonDeviceIneligible)
	}
	if o.pulling.Load() {
		return llm.Unavailable(llm.ReasonModelDownloading)
	}

	installed, err := o.hasModel(ctx)
	if err != nil {
		if errors.Is(err, llm.ErrUnreachable) {
			return llm.UnavailableOther(fmt.Sprintf("cannot reach Ollama at %s", o.BaseURL))
		}
		return llm.UnavailableOther(err.Error())
	}
	if installed {
		return llm.Available()
	}

	failure := o.pullFailure.Load()
	if o.AutoPull && (failure == nil || o.now().Sub(failure.at) >= o.PullRetryAfter) {
		o.StartPull()
		return llm.Unavailable(llm.ReasonModelDownloading)
	}
	if failure != nil {
		return llm.UnavailableOther(fmt.Sprintf("downloading %s failed: %s", o.ModelName, failure.message))
	}
	return llm.UnavailableOther(fmt.Sprintf("model %s is not installed", o.ModelName))
}

// StartPull downloads the configured model in the background, ignoring any
// earlier failure. It is a no-op while another pull is running.
func (o *OllamaProvider) StartPull() {
	if !o.pulling.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer o.pulling.Store(false)
		if err := o.Pull(context.Background()); err != nil {
			o.pullFailure.Store(&pullFailure{message: err.Error(), at: o.now()})
			return
		}
		o.pullFailure.Store(nil)
	}()
}

// Pulling reports whether a background pull is in progress.
func (o *OllamaProvider) Pulling() bool {
	return o.pulling.Load()
}

// Pull blocks until the server finished downloading the configured model.
func (o *OllamaProvider) Pull(ctx context.Context) error {
	var resp ollamaPullResponse
	client := &http.Client{Transport: o.Client.Transport} // pulls outlive the chat timeout
	if err := o.doJSON(ctx, client, http.MethodPost, constant.OllamaPullEndpoint, ollamaPullRequest{Model: o.ModelName}, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: %s", llm.ErrRejected, resp.Error)
	}
	return nil
}

func (o *OllamaProvider) hasModel(ctx context.Context) (bool, error) {
	var tags ollamaTagsResponse
	if err := o.doJSON(ctx, o.Client, http.MethodGet, constant.OllamaTagsEndpoint, nil, &tags); err != nil {
		return false, err
	}
	for _, m := range tags.Models {
		if modelMatches(o.ModelName, m.Name) || modelMatches(o.ModelName, m.Model) {
			return true, nil
		}
	}
	return false, nil
}

func (o *OllamaProvider) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	return o.doJSON(ctx, o.Client, http.MethodPost, path, payload, out)
}

func (o *OllamaProvider) doJSON(ctx context.Context, client *http.Client, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return fmt.Errorf("ollama request timed out: %w", err)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", llm.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama status %d, body: %s", llm.ErrRejected, resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (o *OllamaProvider) isLocal() bool {
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// modelMatches treats "llama3" and "llama3:latest" as the same model.
func modelMatches(want, got string) bool {
	if want == got {
		return true
	}
	if !strings.Contains(want, ":") {
		return want+":latest" == got
	}
	return false
}

func supportedPlatform(goos, goarch string) bool {
	switch goos {
	case "linux", "darwin", "windows":
	default:
		return false
	}
	return goarch == "amd64" || goarch == "arm64"
}
