// Package transport submits request parts to the external translation
// authority over HTTP. The authority answers asynchronously through the
// callback endpoints; a successful submission here only means the part was
// accepted for translation.
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/models"
)

// Config carries the authority endpoint and credentials plus the callback
// URLs the authority will answer to.
type Config struct {
	Endpoint           string
	Application        string
	Password           string
	Domain             string
	SuccessCallbackURL string
	ErrorCallbackURL   string
	Timeout            time.Duration
}

// Client sends translation submissions to the authority. Calls go through a
// circuit breaker so a dead authority fails fast instead of tying up the
// dispatch batch until every claim times out.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

func NewClient(cfg Config, logger logging.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "translation-authority",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "authority breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// submission is the authority's expected request body. The part id travels
// as the external reference and comes back on both callbacks.
type submission struct {
	CallerInformation caller       `json:"callerInformation"`
	Document          document     `json:"documentToTranslateBase64"`
	SourceLanguage    string       `json:"sourceLanguage"`
	TargetLanguages   []string     `json:"targetLanguages"`
	Domain            string       `json:"domain,omitempty"`
	ExternalReference string       `json:"externalReference"`
	ErrorCallback     string       `json:"errorCallback"`
	Destinations      destinations `json:"destinations"`
}

type caller struct {
	Application string `json:"application"`
}

type document struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

type destinations struct {
	HTTPDestinations []string `json:"httpDestinations"`
}

// Send submits one part for translation. Any non-2xx answer, transport
// failure, or open breaker is reported as common.ErrSendFailed so the
// dispatcher can treat all of them as a retryable send failure.
func (c *Client) Send(ctx context.Context, request *models.TranslationRequest, part *models.TranslationRequestPart) error {
	body := submission{
		CallerInformation: caller{Application: c.cfg.Application},
		Document: document{
			Content: base64.StdEncoding.EncodeToString(part.Content),
			Format:  part.Format,
		},
		SourceLanguage:    request.FromLang,
		TargetLanguages:   []string{request.ToLang},
		Domain:            c.cfg.Domain,
		ExternalReference: part.ID.String(),
		ErrorCallback:     c.cfg.ErrorCallbackURL,
		Destinations:      destinations{HTTPDestinations: []string{c.cfg.SuccessCallbackURL}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}

	_, err = c.breaker.Execute(func() (any, error) {
		return nil, c.post(ctx, payload)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSendFailed, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Application, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		answer, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("authority answered %d: %s", resp.StatusCode, answer)
	}
	return nil
}
