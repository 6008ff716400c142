// Package clients holds adapters for external services. The responder is
// the answering service queries are forwarded to; it is consumed only
// through its request/response contract.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campusgpt-backend/apperr"
)

// ErrNoAnswer means the responder replied 2xx but no usable answer string
// could be extracted from the body.
var ErrNoAnswer = errors.New("no usable answer in responder response")

type AskRequest struct {
	Query   string `json:"query"`
	UserId  string `json:"user_id"`
	QueryId string `json:"query_id"`
}

type Responder struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewResponder(url string, timeout time.Duration) *Responder {
	return &Responder{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Ask forwards the query and returns the extracted answer. The call carries
// a hard deadline; on expiry it is treated the same as a transport failure.
func (r *Responder) Ask(ctx context.Context, req AskRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, "could not encode responder request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, "could not build responder request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperr.Wrap(apperr.UpstreamFailure, "responder timeout", err)
		}
		return "", apperr.Wrap(apperr.UpstreamFailure, "responder unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, "could not read responder response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.New(apperr.UpstreamFailure,
			fmt.Sprintf("responder returned status %d", resp.StatusCode))
	}

	answer, err := ExtractAnswer(raw)
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, "malformed responder response", err)
	}
	return answer, nil
}

// answerFields are the alternate names an answer string may hide under,
// either at the top level or nested one object deep.
var answerFields = []string{"answer", "response", "result", "data"}

// ExtractAnswer pulls the answer string out of a loosely-shaped responder
// body. Accepted shapes: a bare JSON string, an object with one of the known
// fields holding a string, or the same one level down (e.g. {"data":
// {"answer": ...}}). Everything else is ErrNoAnswer.
func ExtractAnswer(body []byte) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	if s, ok := answerFrom(v, 0); ok {
		return s, nil
	}
	return "", ErrNoAnswer
}

func answerFrom(v any, depth int) (string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) != "" {
			return t, true
		}
	case map[string]any:
		if depth >= 2 {
			return "", false
		}
		for _, field := range answerFields {
			if inner, ok := t[field]; ok {
				if s, ok := answerFrom(inner, depth+1); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}
