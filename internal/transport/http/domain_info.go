package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/domain"
)

// DomainInfoProvider is the read surface for issued domains.
type DomainInfoProvider interface {
	GetInfo(ctx context.Context, fqdn string) (domain.Domain, error)
	VerifyNFT(ctx context.Context, fqdn string) (app.NFTResult, error)
}

type profileResponse struct {
	DisplayName  string `json:"display_name,omitempty"`
	Bio          string `json:"bio,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	PaymentRoute string `json:"payment_route,omitempty"`
}

type nftLinkResponse struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Chain           string `json:"chain"`
	IPFSHash        string `json:"ipfs_hash,omitempty"`
}

type domainInfoResponse struct {
	FQDN         string           `json:"fqdn"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	RegisteredAt time.Time        `json:"registered_at"`
	Profile      *profileResponse `json:"profile,omitempty"`
	NFT          *nftLinkResponse `json:"nft,omitempty"`
}

// HandleGetDomainInfo returns an HTTP handler for the public domain record.
func HandleGetDomainInfo(svc DomainInfoProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		fqdn := r.URL.Query().Get("fqdn")
		if fqdn == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "fqdn is required")
			return
		}

		d, err := svc.GetInfo(r.Context(), fqdn)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := domainInfoResponse{
			FQDN:         d.FQDN,
			Name:         d.Name,
			Type:         string(d.Class),
			Status:       string(d.Status),
			RegisteredAt: d.CreatedAt,
		}
		if d.Profile != nil {
			resp.Profile = &profileResponse{
				DisplayName:  d.Profile.DisplayName,
				Bio:          d.Profile.Bio,
				AvatarURL:    d.Profile.AvatarURL,
				PaymentRoute: d.Profile.PaymentRoute,
			}
		}
		if d.NFT != nil {
			resp.NFT = &nftLinkResponse{
				ContractAddress: d.NFT.ContractAddress,
				TokenID:         d.NFT.TokenID,
				Chain:           d.NFT.Chain,
				IPFSHash:        d.NFT.IPFSHash,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type verifyNFTResponse struct {
	FQDN            string `json:"fqdn"`
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Chain           string `json:"chain"`
	Exists          bool   `json:"exists"`
	OwnerAddress    string `json:"owner_address,omitempty"`
	TokenURI        string `json:"token_uri,omitempty"`
}

// HandleVerifyNFT returns an HTTP handler for on-chain ownership checks.
func HandleVerifyNFT(svc DomainInfoProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		fqdn := r.URL.Query().Get("fqdn")
		if fqdn == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "fqdn is required")
			return
		}

		res, err := svc.VerifyNFT(r.Context(), fqdn)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := verifyNFTResponse{
			FQDN:            res.FQDN,
			ContractAddress: res.Link.ContractAddress,
			TokenID:         res.Link.TokenID,
			Chain:           res.Link.Chain,
			Exists:          res.Ownership.Exists,
			OwnerAddress:    res.Ownership.OwnerAddress,
			TokenURI:        res.Ownership.TokenURI,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
