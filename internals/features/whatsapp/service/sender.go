package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Sender mengirim satu pesan ke satu nomor.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// GatewaySender: POST form (target, message) dengan header Authorization (format Fonnte/Wablas).
type GatewaySender struct {
	URL   string
	Token string
	HTTP  *http.Client
}

func NewGatewaySender(gatewayURL, token string, timeout time.Duration) *GatewaySender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewaySender{URL: gatewayURL, Token: token, HTTP: &http.Client{Timeout: timeout}}
}

type gatewayReply struct {
	Status *bool  `json:"status"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

func (g *GatewaySender) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("target", phone)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("gagal membuat request gateway: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", g.Token)

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("gateway tidak dapat dihubungi: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// sebagian gateway membalas 200 dengan {"status": false, "reason": "..."}
	var reply gatewayReply
	if err := sonic.Unmarshal(body, &reply); err == nil && reply.Status != nil && !*reply.Status {
		reason := reply.Reason
		if reason == "" {
			reason = reply.Detail
		}
		if reason == "" {
			reason = "ditolak gateway"
		}
		return fmt.Errorf("gateway: %s", reason)
	}
	return nil
}
