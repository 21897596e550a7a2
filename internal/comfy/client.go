package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"videogenhost/internal/domain"
	"videogenhost/internal/infra"
	"videogenhost/internal/workflow"
)

// videoExtensions are the artifact types the service serves. Everything else
// the backend reports (previews, intermediate images) is filtered out.
var videoExtensions = map[string]bool{
	".webp": true,
	".webm": true,
	".mp4":  true,
	".gif":  true,
	".apng": true,
}

// Options configures the generation backend client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Dialer         *websocket.Dialer
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client speaks the generation backend's API: a submission POST, a streaming
// progress channel over WebSocket, a history lookup, and raw artifact fetches.
// Transport failures never escape raw; every error wraps one of the domain
// error kinds.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *infra.Logger
}

// ArtifactRef names one output file the backend reports as produced by a job.
type ArtifactRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// Ext returns the lower-cased filename extension, including the dot.
func (a ArtifactRef) Ext() string {
	return strings.ToLower(path.Ext(a.Filename))
}

type submitRequest struct {
	Prompt   workflow.Graph `json:"prompt"`
	ClientID string         `json:"client_id"`
}

type submitResponse struct {
	PromptID   string          `json:"prompt_id"`
	Number     int             `json:"number"`
	NodeErrors json.RawMessage `json:"node_errors"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("comfy: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		dialer:     dialer,
		logger:     logger,
	}, nil
}

// Submit queues the payload on the backend and returns the backend-assigned
// prompt id. The payload must already be validated.
func (c *Client) Submit(ctx context.Context, graph workflow.Graph, clientID string) (string, error) {
	body, err := json.Marshal(submitRequest{Prompt: graph, ClientID: clientID})
	if err != nil {
		return "", fmt.Errorf("comfy: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("comfy: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: submit: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read submit response: %v", domain.ErrBackendUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: submit status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode submit response: %v", domain.ErrBackendUnavailable, err)
	}
	if decoded.PromptID == "" {
		return "", fmt.Errorf("%w: submit response missing prompt_id", domain.ErrBackendUnavailable)
	}
	c.logger.Debug().Str("prompt_id", decoded.PromptID).Int("queue_number", decoded.Number).Msg("comfy: queued prompt")
	return decoded.PromptID, nil
}

// TrackProgress opens the backend's progress channel and reads typed events
// until the backend signals completion for promptID, the peer closes the
// connection, or ctx is cancelled. It does not return until the channel ends,
// so it must run in its own goroutine, never a request-serving one. fn may be
// nil when the caller only cares about completion.
func (c *Client) TrackProgress(ctx context.Context, clientID, promptID string, fn ProgressFunc) error {
	wsURL, err := c.progressURL(clientID)
	if err != nil {
		return err
	}
	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("%w: progress dial: %v", domain.ErrBackendUnavailable, err)
	}
	defer conn.Close()

	// Unblock the read loop when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: progress channel: %v", domain.ErrBackendUnavailable, ctx.Err())
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: progress read: %v", domain.ErrBackendUnavailable, err)
		}
		// Binary frames carry preview images; the service has no use for them.
		if msgType != websocket.TextMessage {
			continue
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Debug().Err(err).Msg("comfy: skipping malformed progress frame")
			continue
		}
		switch f.Type {
		case frameProgress:
			var ev ProgressEvent
			if err := json.Unmarshal(f.Data, &ev); err != nil {
				continue
			}
			if fn != nil {
				fn(&ev, nil, nil)
			}
		case frameExecuting:
			var ev ExecutingEvent
			if err := json.Unmarshal(f.Data, &ev); err != nil {
				continue
			}
			if fn != nil {
				fn(nil, &ev, nil)
			}
			if ev.Node == nil && ev.PromptID == promptID {
				return nil
			}
		case frameExecutionCached:
			var ev CachedEvent
			if err := json.Unmarshal(f.Data, &ev); err != nil {
				continue
			}
			if fn != nil {
				fn(nil, nil, &ev)
			}
		default:
			// Other frame types (status, execution_start, ...) are tolerated
			// and ignored.
		}
	}
}

// FetchOutputs looks up the finished job's history entry and returns its video
// artifacts. Preview/temp artifacts are excluded unless includePreviews is set.
func (c *Client) FetchOutputs(ctx context.Context, promptID string, includePreviews bool) ([]ArtifactRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(promptID), nil)
	if err != nil {
		return nil, fmt.Errorf("comfy: build history request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", domain.ErrResultFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: history status %d", domain.ErrResultFetch, resp.StatusCode)
	}

	// history maps prompt id -> {"outputs": {node id -> {category -> [artifact]}}}
	var history map[string]struct {
		Outputs map[string]map[string]json.RawMessage `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("%w: decode history: %v", domain.ErrResultFetch, err)
	}
	entry, ok := history[promptID]
	if !ok {
		return nil, fmt.Errorf("%w: history has no entry for prompt %s", domain.ErrResultFetch, promptID)
	}

	var refs []ArtifactRef
	for _, categories := range entry.Outputs {
		for _, raw := range categories {
			var candidates []ArtifactRef
			if err := json.Unmarshal(raw, &candidates); err != nil {
				// Non-artifact output fields (text, numbers) live alongside
				// artifact lists; skip anything that is not a list of refs.
				continue
			}
			for _, ref := range candidates {
				if ref.Filename == "" || !videoExtensions[ref.Ext()] {
					continue
				}
				if ref.Type == "temp" && !includePreviews {
					continue
				}
				refs = append(refs, ref)
			}
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no video artifacts for prompt %s", domain.ErrResultFetch, promptID)
	}
	return refs, nil
}

// Download fetches the raw bytes of one artifact.
func (c *Client) Download(ctx context.Context, ref ArtifactRef) ([]byte, error) {
	query := url.Values{}
	query.Set("filename", ref.Filename)
	query.Set("subfolder", ref.Subfolder)
	query.Set("type", ref.Type)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("comfy: build view request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", domain.ErrResultFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: download status %d", domain.ErrResultFetch, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact: %v", domain.ErrResultFetch, err)
	}
	return data, nil
}

func (c *Client) progressURL(clientID string) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("comfy: parse base url: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/ws"
	parsed.RawQuery = url.Values{"clientId": {clientID}}.Encode()
	return parsed.String(), nil
}
