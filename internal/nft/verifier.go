// Package nft is the read-only lookup surface for on-chain domain tokens.
// Minting is external; this client only asks an indexer gateway who owns a
// token.
package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pixglobal/registry/internal/domain"
)

const requestTimeout = 10 * time.Second

// Ownership is the gateway's answer for one token.
type Ownership struct {
	Exists       bool   `json:"exists"`
	OwnerAddress string `json:"owner_address"`
	TokenURI     string `json:"token_uri,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(gatewayURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(gatewayURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Verify asks the gateway for the current owner of a linked token.
func (c *Client) Verify(ctx context.Context, link domain.NFTLink) (Ownership, error) {
	q := url.Values{
		"contract": {link.ContractAddress},
		"token_id": {link.TokenID},
		"chain":    {link.Chain},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/owner?"+q.Encode(), nil)
	if err != nil {
		return Ownership{}, fmt.Errorf("build owner request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Ownership{}, fmt.Errorf("nft gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Ownership{Exists: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Ownership{}, fmt.Errorf("nft gateway status %d", resp.StatusCode)
	}

	var out Ownership
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Ownership{}, fmt.Errorf("decode owner response: %w", err)
	}
	out.Exists = true
	return out, nil
}
