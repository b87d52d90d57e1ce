package domain

import "time"

type DomainStatus string

const (
	DomainStatusActive              DomainStatus = "active"
	DomainStatusFailed              DomainStatus = "failed"
	DomainStatusPendingProvisioning DomainStatus = "pending_provisioning"
)

// Profile is optional public metadata attached to personal domains.
type Profile struct {
	DisplayName  string `json:"display_name,omitempty"`
	Bio          string `json:"bio,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	PaymentRoute string `json:"payment_route,omitempty"`
}

// NFTLink records on-chain metadata for a minted domain.
type NFTLink struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Chain           string `json:"chain"`
	IPFSHash        string `json:"ipfs_hash,omitempty"`
}

// Domain is the issued asset. The fully-qualified name is globally unique;
// the registry's uniqueness constraint is the single source of truth for
// availability.
type Domain struct {
	ID        string
	FQDN      string
	Name      string
	Class     Class
	OwnerID   string
	Status    DomainStatus
	Profile   *Profile
	NFT       *NFTLink
	CreatedAt time.Time
}
