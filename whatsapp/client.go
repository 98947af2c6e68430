// Package whatsapp posts approved message templates to the WhatsApp Business
// (Meta Graph) API.
package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sendWorkers = 4

type Client struct {
	apiURL string
	token  string
	http   *http.Client
}

func NewClient(apiURL, token string) *Client {
	return &Client{
		apiURL: apiURL,
		token:  token,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NormalizePhone strips non-digits and swaps a leading "0" for the "94"
// country code. Numbers already carrying the country code pass through.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		return "94" + digits[1:]
	}
	return digits
}

// SendResult is the per-recipient outcome of a batch send.
type SendResult struct {
	Phone    string         `json:"phone"`
	Response map[string]any `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// SendTemplate posts one template message to one recipient. The phone number
// is normalized before sending.
func (c *Client) SendTemplate(phone, template string) (map[string]any, error) {
	to := NormalizePhone(phone)

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name": template,
			"language": map[string]any{
				"code": "en_US",
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("whatsapp api returned %d", resp.StatusCode)
	}
	return out, nil
}

// Broadcast sends one template to every number, best effort. Sends fan out
// over a small worker pool; one failing recipient never blocks the rest.
// Results come back in input order.
func (c *Client) Broadcast(numbers []string, template string) []SendResult {
	results := make([]SendResult, len(numbers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, sendWorkers)
	for i, num := range numbers {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, num string) {
			defer wg.Done()
			defer func() { <-sem }()

			res := SendResult{Phone: NormalizePhone(num)}
			out, err := c.SendTemplate(num, template)
			res.Response = out
			if err != nil {
				res.Error = err.Error()
			}
			results[i] = res
		}(i, num)
	}
	wg.Wait()
	return results
}
