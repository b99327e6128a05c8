package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"medslot/internal/domain"
)

// countingDirectory records how often the backing store is read.
type countingDirectory struct {
	DirectoryRepository
	profileReads  int
	hospitalReads int
}

func (d *countingDirectory) GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error) {
	d.profileReads++
	return d.DirectoryRepository.GetDoctorProfile(ctx, id)
}

func (d *countingDirectory) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	d.hospitalReads++
	return d.DirectoryRepository.GetHospital(ctx, id)
}

func setupCachedDirectory(t *testing.T) (*miniredis.Miniredis, *countingDirectory, *CachedDirectory) {
	return setupCachedDirectoryWithLogger(t, zap.NewNop())
}

func setupCachedDirectoryWithLogger(t *testing.T, logger *zap.Logger) (*miniredis.Miniredis, *countingDirectory, *CachedDirectory) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingDirectory{DirectoryRepository: NewMemoryRepositories().Directory}
	return mr, backing, NewCachedDirectory(backing, client, time.Minute, logger)
}

func TestCachedDirectory_DoctorProfile(t *testing.T) {
	mr, backing, cache := setupCachedDirectory(t)
	ctx := context.Background()

	require.NoError(t, cache.UpsertDoctorProfile(ctx, domain.DoctorProfile{
		ID:              "doctor-1",
		Name:            "Иван Петров",
		Specializations: []string{"Cardiology"},
	}))

	for i := 0; i < 3; i++ {
		p, err := cache.GetDoctorProfile(ctx, "doctor-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Cardiology"}, p.Specializations)
	}
	assert.Equal(t, 1, backing.profileReads)
	assert.True(t, mr.Exists(doctorProfileKeyPrefix+"doctor-1"))

	require.NoError(t, cache.UpsertDoctorProfile(ctx, domain.DoctorProfile{
		ID:              "doctor-1",
		Name:            "Иван Петров",
		Specializations: []string{"Therapy"},
	}))
	assert.False(t, mr.Exists(doctorProfileKeyPrefix+"doctor-1"))

	p, err := cache.GetDoctorProfile(ctx, "doctor-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Therapy"}, p.Specializations)
	assert.Equal(t, 2, backing.profileReads)
}

func TestCachedDirectory_MissIsNotCached(t *testing.T) {
	mr, backing, cache := setupCachedDirectory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		h, err := cache.GetHospital(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, h)
	}
	assert.Equal(t, 2, backing.hospitalReads)
	assert.False(t, mr.Exists(hospitalKeyPrefix+"missing"))
}

func TestCachedDirectory_ExpiresAndSurvivesOutage(t *testing.T) {
	mr, backing, cache := setupCachedDirectory(t)
	ctx := context.Background()

	require.NoError(t, cache.CreateHospital(ctx, domain.Hospital{ID: "hospital-a", Name: "Больница А"}))

	_, err := cache.GetHospital(ctx, "hospital-a")
	require.NoError(t, err)
	_, err = cache.GetHospital(ctx, "hospital-a")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.hospitalReads)

	mr.FastForward(2 * time.Minute)
	_, err = cache.GetHospital(ctx, "hospital-a")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.hospitalReads)

	mr.Close()
	h, err := cache.GetHospital(ctx, "hospital-a")
	require.NoError(t, err)
	assert.Equal(t, "Больница А", h.Name)
}

func TestCachedDirectory_UpsertSucceedsWhenInvalidationFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mr, backing, cache := setupCachedDirectoryWithLogger(t, zap.New(core))
	ctx := context.Background()

	mr.Close()
	err := cache.UpsertDoctorProfile(ctx, domain.DoctorProfile{
		ID:              "doctor-1",
		Name:            "Иван Петров",
		Specializations: []string{"Cardiology"},
	})
	require.NoError(t, err)

	p, err := backing.DirectoryRepository.GetDoctorProfile(ctx, "doctor-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Иван Петров", p.Name)

	entries := logs.FilterField(zap.String("doctor_id", "doctor-1")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
