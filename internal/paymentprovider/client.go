package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/config"
)

const defaultAPIURL = "https://paytech.sn/api"

// Client calls the PayTech HTTP API.
type Client struct {
	cfg        config.PayTech
	apiURL     string
	httpClient *http.Client
}

// NewClient builds a PayTech client from the configured credentials.
func NewClient(cfg config.PayTech) *Client {
	return &Client{
		cfg:        cfg,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// InitPayment creates a checkout session and returns the provider token
// and redirect URL. Provider failures surface as Upstream errors; there
// is no retry, the caller sees the failure immediately.
func (c *Client) InitPayment(ctx context.Context, reqParams InitPaymentRequest) (*InitPaymentResponse, error) {
	const op = "paymentprovider.InitPayment"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqParams); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/payment/request-payment", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API_KEY", c.cfg.APIKey)
	req.Header.Set("API_SECRET", c.cfg.APISecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "payment provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperr.New(apperr.Upstream, "payment provider returned "+resp.Status)
	}

	var initResp InitPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "unexpected payment provider response", err)
	}
	if initResp.Success != 1 || initResp.RedirectURL == "" {
		return nil, apperr.New(apperr.Upstream, "payment provider rejected the request")
	}
	return &initResp, nil
}
