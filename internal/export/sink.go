package export

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sink posts JSON payloads signed with HMAC-SHA256 in the X-Signature header.
type Sink struct {
	c      Doer
	url    string
	secret string
}

func NewSink(c Doer, url, secret string) *Sink {
	return &Sink{c: c, url: url, secret: secret}
}

func (s *Sink) Configured() bool { return s != nil && s.url != "" && s.secret != "" }

func (s *Sink) Send(ctx context.Context, payload any) error {
	if !s.Configured() {
		return ErrSinkNotConfigured
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(b, s.secret))
	resp, err := s.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("export sink non-2xx: %d", resp.StatusCode)
	}
	return nil
}

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
