package pricing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/metrics"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
)

const CLIENT_SERVICE_NAME = "PricingClientService"

// ClientService fetches route quotes from the pricing service and keeps the
// most recently requested quote fresh in the background.
type ClientService struct {
	container.BaseDIInstance

	baseURL    string
	apiVersion string
	chainID    string
	httpClient *http.Client
	refresher  *Refresher

	latestMu sync.RWMutex
	latest   *QuoteResponse

	logger *services.ServiceLogger
}

func (svc *ClientService) ID() string {
	return CLIENT_SERVICE_NAME
}

func (svc *ClientService) Configure(c container.IContainer) error {
	cfg := c.GetConfig(config.PRICING_CONFIG_KEY).(*config.PricingConfig)
	svc.baseURL = cfg.BaseURL
	svc.apiVersion = cfg.APIVersion
	svc.chainID = cfg.ChainID
	svc.httpClient = &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second}
	svc.refresher = NewRefresher(svc, time.Duration(cfg.RefreshIntervalSec)*time.Second)
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

func (svc *ClientService) Stop() error {
	svc.refresher.Stop()
	return nil
}

// NewClient builds a pricing client outside the container, mainly for tests.
func NewClient(baseURL, apiVersion, chainID string, httpClient *http.Client) *ClientService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	svc := &ClientService{
		baseURL:    baseURL,
		apiVersion: apiVersion,
		chainID:    chainID,
		httpClient: httpClient,
	}
	svc.refresher = NewRefresher(svc, 10*time.Second)
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

// Refresher exposes the background loop so the executor can pause it while
// an attempt is submitting.
func (svc *ClientService) Refresher() *Refresher {
	return svc.refresher
}

// Watch makes req the actively refreshed quote. Each fresh response replaces
// the one Latest returns; a new Watch drops the previous subject.
func (svc *ClientService) Watch(req *QuoteRequest) {
	svc.refresher.Stop()
	svc.refresher.Start(context.Background(), req, func(resp *QuoteResponse) {
		svc.latestMu.Lock()
		svc.latest = resp
		svc.latestMu.Unlock()
	})
}

// Latest returns the most recent refreshed quote, nil before the first
// refresh lands.
func (svc *ClientService) Latest() *QuoteResponse {
	svc.latestMu.RLock()
	defer svc.latestMu.RUnlock()
	return svc.latest
}

// Quote posts the swap parameters and returns the best route plus the
// alternative single-venue distributions. Any failure surfaces as
// ErrQuoteUnavailable so callers can distinguish pricing outages from build
// failures.
func (svc *ClientService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	started := time.Now()
	resp, err := svc.quote(ctx, req)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", common.ErrQuoteUnavailable, err)
	}
	metrics.QuoteRequests.WithLabelValues("ok").Inc()
	metrics.QuoteDuration.Observe(time.Since(started).Seconds())
	return resp, nil
}

func (svc *ClientService) quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/swap/%s/%s", svc.baseURL, svc.apiVersion, svc.chainID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := svc.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricing service returned %d", httpResp.StatusCode)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var out QuoteResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
