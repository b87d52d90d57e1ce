package postgres_test

import (
	"context"
	"testing"

	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/storage/postgres"
	"github.com/pixglobal/registry/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := postgres.NewDomainRepository(pool)

	t.Run("exists flips after insert", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "maria.pix.global")
		require.NoError(t, err)
		assert.False(t, exists)

		testutil.InsertDomain(t, ctx, pool, domain.Domain{
			FQDN:    "maria.pix.global",
			Name:    "maria",
			Class:   domain.ClassPersonal,
			OwnerID: "user-1",
			Status:  domain.DomainStatusActive,
		})

		exists, err = repo.Exists(ctx, "maria.pix.global")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("filter registered in one query", func(t *testing.T) {
		testutil.InsertDomain(t, ctx, pool, domain.Domain{
			FQDN:    "777.com.rich",
			Name:    "777",
			Class:   domain.ClassNumeric,
			OwnerID: "user-2",
			Status:  domain.DomainStatusActive,
		})

		registered, err := repo.FilterRegistered(ctx, []string{
			"maria.pix.global", "777.com.rich", "free.pix.global",
		})
		require.NoError(t, err)
		assert.True(t, registered["maria.pix.global"])
		assert.True(t, registered["777.com.rich"])
		assert.False(t, registered["free.pix.global"])
	})

	t.Run("get by fqdn with profile and nft", func(t *testing.T) {
		_, err := pool.Exec(ctx, `
INSERT INTO domains (fqdn, name, class, owner_id, status, profile, nft)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			"joana.pix.global", "joana", "personal", "user-3", "active",
			[]byte(`{"display_name":"Joana","payment_route":"joana@bank.example"}`),
			[]byte(`{"contract_address":"0xabc","token_id":"42","chain":"polygon"}`),
		)
		require.NoError(t, err)

		d, err := repo.GetByFQDN(ctx, "joana.pix.global")
		require.NoError(t, err)
		assert.Equal(t, "joana", d.Name)
		assert.Equal(t, domain.ClassPersonal, d.Class)
		require.NotNil(t, d.Profile)
		assert.Equal(t, "Joana", d.Profile.DisplayName)
		assert.Equal(t, "joana@bank.example", d.Profile.PaymentRoute)
		require.NotNil(t, d.NFT)
		assert.Equal(t, "42", d.NFT.TokenID)
	})

	t.Run("get missing fqdn", func(t *testing.T) {
		_, err := repo.GetByFQDN(ctx, "missing.pix.global")
		assert.ErrorIs(t, err, domain.ErrDomainNotFound)
	})
}
