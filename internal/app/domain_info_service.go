package app

import (
	"context"
	"fmt"

	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/nft"
)

// DomainReader is the public read surface of the registry.
type DomainReader interface {
	GetByFQDN(ctx context.Context, fqdn string) (domain.Domain, error)
}

// NFTVerifier looks up on-chain ownership for a linked token.
type NFTVerifier interface {
	Verify(ctx context.Context, link domain.NFTLink) (nft.Ownership, error)
}

type DomainInfoService struct {
	repo     DomainReader
	verifier NFTVerifier
}

func NewDomainInfoService(repo DomainReader, verifier NFTVerifier) *DomainInfoService {
	return &DomainInfoService{repo: repo, verifier: verifier}
}

// GetInfo returns the public record for an issued domain.
func (s *DomainInfoService) GetInfo(ctx context.Context, fqdn string) (domain.Domain, error) {
	return s.repo.GetByFQDN(ctx, domain.Normalize(fqdn))
}

type NFTResult struct {
	FQDN      string
	Link      domain.NFTLink
	Ownership nft.Ownership
}

// VerifyNFT resolves the domain's token link and asks the chain gateway
// who owns it. Read-only in both directions.
func (s *DomainInfoService) VerifyNFT(ctx context.Context, fqdn string) (NFTResult, error) {
	d, err := s.repo.GetByFQDN(ctx, domain.Normalize(fqdn))
	if err != nil {
		return NFTResult{}, err
	}
	if d.NFT == nil {
		return NFTResult{}, domain.ErrNoNFTLink
	}

	ownership, err := s.verifier.Verify(ctx, *d.NFT)
	if err != nil {
		return NFTResult{}, fmt.Errorf("verify nft: %w", err)
	}
	return NFTResult{FQDN: d.FQDN, Link: *d.NFT, Ownership: ownership}, nil
}
