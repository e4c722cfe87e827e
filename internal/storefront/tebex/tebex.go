// Package tebex implements the storefront.Provider interface against the
// Tebex Plugin and Headless APIs.
package tebex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ulogstudios/review-bot/internal/domain"
	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
	"github.com/ulogstudios/review-bot/pkg/httpclient"
)

const (
	// directLookupTimeout bounds the by-id lookup; the fallback list scan
	// runs on the caller's deadline.
	directLookupTimeout = 5 * time.Second

	// recentPaymentsLimit bounds the fallback list. Basket idents and other
	// identifier formats the by-id endpoint rejects are recovered from here.
	recentPaymentsLimit = 100
)

// Config holds Tebex API configuration.
type Config struct {
	PluginAPIURL   string
	HeadlessAPIURL string
	Secret         string
	WebstoreID     string
}

// Client talks to the Tebex APIs through a circuit-breaker HTTP client.
type Client struct {
	cfg    Config
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewClient creates a Tebex API client.
func NewClient(cfg Config, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{cfg: cfg, http: http, logger: logger}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tebex"
}

// Wire types for the Plugin API.
type pluginPayment struct {
	ID       json.Number    `json:"id"`
	Amount   json.Number    `json:"amount"`
	Currency pluginCurrency `json:"currency"`
	Date     string         `json:"date"`
	Player   pluginPlayer   `json:"player"`
	Packages []pluginPkg    `json:"packages"`
	Status   string         `json:"status"`
}

type pluginCurrency struct {
	ISO4217 string `json:"iso_4217"`
	Symbol  string `json:"symbol"`
}

type pluginPlayer struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type pluginPkg struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Image    string      `json:"image"`
}

// LookupPayment resolves a payment by transaction id. The direct by-id lookup
// is tried first with a short timeout; on any failure the bounded
// recent-payments list is scanned for a matching id.
func (c *Client) LookupPayment(ctx context.Context, transactionID string) (*domain.Payment, error) {
	id := strings.TrimSpace(transactionID)

	payment, directErr := c.lookupByID(ctx, id)
	if directErr == nil {
		return payment, nil
	}

	recent, listErr := c.recentPayments(ctx)
	if listErr != nil {
		c.logger.WarnContext(ctx, "tebex recent-payments fallback failed",
			slog.String("transaction_id", id),
			slog.String("direct_error", directErr.Error()),
			slog.String("list_error", listErr.Error()),
		)
		return nil, fmt.Errorf("lookup payment %q: %w", id, apperrors.ErrNotFound)
	}

	for i := range recent {
		if recent[i].ID.String() == id {
			p := formatPayment(&recent[i])
			return p, nil
		}
	}

	return nil, fmt.Errorf("lookup payment %q: %w", id, apperrors.ErrNotFound)
}

func (c *Client) lookupByID(ctx context.Context, id string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, directLookupTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/payments/%s", c.cfg.PluginAPIURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}
	req.Header.Set("X-Tebex-Secret", c.cfg.Secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %q: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch payment %q: unexpected status %d", id, resp.StatusCode)
	}

	var wire pluginPayment
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode payment %q: %w", id, err)
	}
	if wire.ID.String() == "" {
		return nil, fmt.Errorf("fetch payment %q: empty payment body", id)
	}

	return formatPayment(&wire), nil
}

func (c *Client) recentPayments(ctx context.Context) ([]pluginPayment, error) {
	url := fmt.Sprintf("%s/payments?limit=%d", c.cfg.PluginAPIURL, recentPaymentsLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create recent-payments request: %w", err)
	}
	req.Header.Set("X-Tebex-Secret", c.cfg.Secret)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch recent payments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recent payments: unexpected status %d", resp.StatusCode)
	}

	var payments []pluginPayment
	if err := json.NewDecoder(resp.Body).Decode(&payments); err != nil {
		return nil, fmt.Errorf("decode recent payments: %w", err)
	}

	return payments, nil
}

// formatPayment normalizes a wire payment into the domain snapshot.
func formatPayment(wire *pluginPayment) *domain.Payment {
	currency := wire.Currency.ISO4217
	if currency == "" {
		currency = wire.Currency.Symbol
	}
	if currency == "" {
		currency = "USD"
	}

	date, err := time.Parse(time.RFC3339, wire.Date)
	if err != nil {
		date = time.Time{}
	}

	packages := make([]domain.Package, 0, len(wire.Packages))
	for _, pkg := range wire.Packages {
		quantity := pkg.Quantity
		if quantity == 0 {
			quantity = 1
		}
		packages = append(packages, domain.Package{
			ID:       pkg.ID.String(),
			Name:     pkg.Name,
			Quantity: quantity,
			Image:    pkg.Image,
		})
	}

	playerName := wire.Player.Name
	if playerName == "" {
		playerName = "Unknown"
	}

	return &domain.Payment{
		ID:         wire.ID.String(),
		Amount:     wire.Amount.String(),
		Currency:   currency,
		Date:       date,
		PlayerName: playerName,
		PlayerID:   wire.Player.ID.String(),
		Packages:   packages,
		Status:     wire.Status,
	}
}

// Wire types for the Headless API.
type headlessResponse struct {
	Data []headlessCategory `json:"data"`
}

type headlessCategory struct {
	Packages []headlessPackage `json:"packages"`
}

type headlessPackage struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Image string      `json:"image"`
}

// FindPackageImage backfills a product image from the Headless catalog by
// case-insensitive exact name match. Returns "" when the webstore id is not
// configured or no package matches.
func (c *Client) FindPackageImage(ctx context.Context, packageName string) (string, error) {
	if c.cfg.WebstoreID == "" {
		return "", nil
	}

	url := fmt.Sprintf("%s/api/accounts/%s/categories?includePackages=1", c.cfg.HeadlessAPIURL, c.cfg.WebstoreID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	var catalog headlessResponse
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return "", fmt.Errorf("decode catalog: %w", err)
	}

	for _, category := range catalog.Data {
		for _, pkg := range category.Packages {
			if strings.EqualFold(pkg.Name, packageName) {
				return pkg.Image, nil
			}
		}
	}

	return "", nil
}
