// Package client holds thin HTTP clients for the partner and back-office
// services the proposal flow depends on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"solarfin-backend/internal/energy"
	"solarfin-backend/internal/viability"
)

const requestTimeout = 10 * time.Second

// PartnerClient talks to the partner integration service for distributor
// tariffs and equipment compatibility. It satisfies viability.TariffProvider
// and viability.EquipmentChecker.
type PartnerClient struct {
	baseURL string
	client  *http.Client
}

func NewPartnerClient(baseURL string) *PartnerClient {
	return &PartnerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *PartnerClient) Tariff(ctx context.Context, region string) (viability.Tariff, error) {
	u := fmt.Sprintf("%s/tariffs/%s", c.baseURL, url.PathEscape(region))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return viability.Tariff{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return viability.Tariff{}, fmt.Errorf("tariff lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return viability.Tariff{}, fmt.Errorf("tariff lookup: unexpected status %d", resp.StatusCode)
	}
	var t viability.Tariff
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return viability.Tariff{}, fmt.Errorf("tariff lookup: decode: %w", err)
	}
	return t, nil
}

func (c *PartnerClient) Check(ctx context.Context, system energy.System) (viability.Equipment, error) {
	payload, err := json.Marshal(system)
	if err != nil {
		return viability.Equipment{}, err
	}
	u := c.baseURL + "/equipment/compatibility"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return viability.Equipment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return viability.Equipment{}, fmt.Errorf("equipment check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return viability.Equipment{}, fmt.Errorf("equipment check: unexpected status %d", resp.StatusCode)
	}
	var e viability.Equipment
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return viability.Equipment{}, fmt.Errorf("equipment check: decode: %w", err)
	}
	return e, nil
}
