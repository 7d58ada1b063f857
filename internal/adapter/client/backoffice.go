package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	uc "solarfin-backend/internal/usecase/proposal"
)

// BackofficeClient talks to the back-office service for account spending
// limits and manual-approval workflow records. It satisfies
// proposal.SpendingLimitChecker and proposal.ApprovalCreator.
type BackofficeClient struct {
	baseURL string
	client  *http.Client
}

func NewBackofficeClient(baseURL string) *BackofficeClient {
	return &BackofficeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type limitCheckReq struct {
	AccountID string  `json:"account_id"`
	Amount    float64 `json:"amount"`
}

type limitCheckResp struct {
	Allowed   bool    `json:"allowed"`
	Remaining float64 `json:"remaining"`
	Reason    string  `json:"reason"`
}

func (c *BackofficeClient) Check(ctx context.Context, accountID string, amount float64) (uc.LimitDecision, error) {
	payload, _ := json.Marshal(limitCheckReq{AccountID: accountID, Amount: amount})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/limits/check", bytes.NewReader(payload))
	if err != nil {
		return uc.LimitDecision{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return uc.LimitDecision{}, fmt.Errorf("limit check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return uc.LimitDecision{}, fmt.Errorf("limit check: unexpected status %d", resp.StatusCode)
	}
	var out limitCheckResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uc.LimitDecision{}, fmt.Errorf("limit check: decode: %w", err)
	}
	return uc.LimitDecision{Allowed: out.Allowed, Remaining: out.Remaining, Reason: out.Reason}, nil
}

type createApprovalReq struct {
	ProposalID  string  `json:"proposal_id"`
	Amount      float64 `json:"amount"`
	RequestedAt string  `json:"requested_at"`
}

func (c *BackofficeClient) CreateApproval(ctx context.Context, proposalID string, amount float64) error {
	payload, _ := json.Marshal(createApprovalReq{
		ProposalID:  proposalID,
		Amount:      amount,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/approvals", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("create approval: unexpected status %d", resp.StatusCode)
	}
	return nil
}
