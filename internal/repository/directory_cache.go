package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medslot/internal/domain"
)

const (
	doctorProfileKeyPrefix = "medslot:doctor_profile:"
	hospitalKeyPrefix      = "medslot:hospital:"
)

// CachedDirectory is a read-through Redis cache in front of doctor profiles and hospitals.
type CachedDirectory struct {
	DirectoryRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedDirectory(next DirectoryRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDirectory {
	return &CachedDirectory{
		DirectoryRepository: next,
		client:              client,
		ttl:                 ttl,
		logger:              logger,
	}
}

func (c *CachedDirectory) GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error) {
	var profile domain.DoctorProfile
	if c.get(ctx, doctorProfileKeyPrefix+id, &profile) {
		return &profile, nil
	}

	p, err := c.DirectoryRepository.GetDoctorProfile(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	c.set(ctx, doctorProfileKeyPrefix+id, p)
	return p, nil
}

func (c *CachedDirectory) UpsertDoctorProfile(ctx context.Context, profile domain.DoctorProfile) error {
	if err := c.DirectoryRepository.UpsertDoctorProfile(ctx, profile); err != nil {
		return err
	}

	// The profile is already stored; a stale entry lives at most ttl.
	if err := c.client.Del(ctx, doctorProfileKeyPrefix+profile.ID).Err(); err != nil {
		c.logger.Warn("не удалось сбросить кэш профиля врача",
			zap.String("doctor_id", profile.ID),
			zap.Duration("ttl", c.ttl),
			zap.Error(err),
		)
	}
	return nil
}

func (c *CachedDirectory) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	var hospital domain.Hospital
	if c.get(ctx, hospitalKeyPrefix+id, &hospital) {
		return &hospital, nil
	}

	h, err := c.DirectoryRepository.GetHospital(ctx, id)
	if err != nil || h == nil {
		return h, err
	}

	c.set(ctx, hospitalKeyPrefix+id, h)
	return h, nil
}

// get treats any cache failure as a miss.
func (c *CachedDirectory) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *CachedDirectory) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}
