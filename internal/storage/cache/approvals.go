// Package cache decorates a storage.JobRepository with short-lived caches for
// provider approvals, which are read on every guard check and every Reported
// notification but change rarely.
package cache

import (
	"context"
	"time"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

type approvalKey struct {
	providerID uuid.UUID
	clientID   uuid.UUID
}

// ApprovalCache caches IsProviderApprovedForClient and GetApprovedProvidersFor.
// Every other method goes straight to the wrapped repository. Errors are not cached.
// Entries are never invalidated early: an approval change shows up once the TTL lapses.
type ApprovalCache struct {
	storage.JobRepository

	approved  *ttlcache.Cache[approvalKey, bool]
	providers *ttlcache.Cache[uuid.UUID, []models.Participant]
}

var _ storage.JobRepository = (*ApprovalCache)(nil)

// NewApprovalCache wraps repo. Call Stop to release the cleanup goroutines.
func NewApprovalCache(repo storage.JobRepository, ttl time.Duration) *ApprovalCache {
	c := &ApprovalCache{
		JobRepository: repo,
		approved: ttlcache.New(
			ttlcache.WithTTL[approvalKey, bool](ttl),
			ttlcache.WithDisableTouchOnHit[approvalKey, bool](),
		),
		providers: ttlcache.New(
			ttlcache.WithTTL[uuid.UUID, []models.Participant](ttl),
			ttlcache.WithDisableTouchOnHit[uuid.UUID, []models.Participant](),
		),
	}
	go c.approved.Start()
	go c.providers.Start()
	return c
}

func (c *ApprovalCache) IsProviderApprovedForClient(ctx context.Context, providerID, clientID uuid.UUID) (bool, error) {
	var loadErr error
	loader := ttlcache.LoaderFunc[approvalKey, bool](
		func(cache *ttlcache.Cache[approvalKey, bool], key approvalKey) *ttlcache.Item[approvalKey, bool] {
			ok, err := c.JobRepository.IsProviderApprovedForClient(ctx, key.providerID, key.clientID)
			if err != nil {
				loadErr = err
				return nil
			}
			return cache.Set(key, ok, ttlcache.DefaultTTL)
		},
	)
	item := c.approved.Get(approvalKey{providerID: providerID, clientID: clientID}, ttlcache.WithLoader(loader))
	if item == nil {
		return false, loadErr
	}
	return item.Value(), nil
}

func (c *ApprovalCache) GetApprovedProvidersFor(ctx context.Context, clientID uuid.UUID) ([]models.Participant, error) {
	var loadErr error
	loader := ttlcache.LoaderFunc[uuid.UUID, []models.Participant](
		func(cache *ttlcache.Cache[uuid.UUID, []models.Participant], key uuid.UUID) *ttlcache.Item[uuid.UUID, []models.Participant] {
			providers, err := c.JobRepository.GetApprovedProvidersFor(ctx, key)
			if err != nil {
				loadErr = err
				return nil
			}
			return cache.Set(key, providers, ttlcache.DefaultTTL)
		},
	)
	item := c.providers.Get(clientID, ttlcache.WithLoader(loader))
	if item == nil {
		return nil, loadErr
	}
	// Callers may modify the slice.
	out := make([]models.Participant, len(item.Value()))
	copy(out, item.Value())
	return out, nil
}

// Stop halts the expiry goroutines.
func (c *ApprovalCache) Stop() {
	c.approved.Stop()
	c.providers.Stop()
}
