package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medslot/internal/domain"
)

const (
	slotsCollection = "availability_slots"
	locksCollection = "locks"

	slotLockTTL      = 10 * time.Second
	slotLockAttempts = 20
	slotLockBackoff  = 50 * time.Millisecond
)

var (
	ErrLockBusy = errors.New("расписание врача изменяется другим запросом")
	ErrLockLost = errors.New("блокировка расписания врача истекла")
)

type slotDocument struct {
	ID                string    `bson:"_id"`
	DoctorID          string    `bson:"doctor_id"`
	HospitalID        string    `bson:"hospital_id"`
	StartTime         time.Time `bson:"start_time"`
	EndTime           time.Time `bson:"end_time"`
	IsBooked          bool      `bson:"is_booked"`
	BookedByPatientID *string   `bson:"booked_by_patient_id,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d slotDocument) toDomain() domain.Slot {
	return domain.Slot{
		ID:                d.ID,
		DoctorID:          d.DoctorID,
		HospitalID:        d.HospitalID,
		StartTime:         d.StartTime,
		EndTime:           d.EndTime,
		IsBooked:          d.IsBooked,
		BookedByPatientID: d.BookedByPatientID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type lockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type SlotMongoRepo struct {
	slots *mongo.Collection
	locks *mongo.Collection
}

func NewSlotMongoRepository(db *mongo.Database) *SlotMongoRepo {
	return &SlotMongoRepo{
		slots: db.Collection(slotsCollection),
		locks: db.Collection(locksCollection),
	}
}

func (r *SlotMongoRepo) CreateExclusive(ctx context.Context, doctorID string, build SlotBuilder) (*domain.Slot, error) {
	lock, err := r.acquireDoctorLock(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	existing, err := r.ListUnbookedByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	slot, err := build(existing)
	if err != nil {
		return nil, err
	}

	if err := lock.renew(ctx); err != nil {
		return nil, err
	}

	doc := slotDocument{
		ID:         slot.ID,
		DoctorID:   slot.DoctorID,
		HospitalID: slot.HospitalID,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		CreatedAt:  slot.CreatedAt,
		UpdatedAt:  slot.CreatedAt,
	}

	if _, err := r.slots.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("ошибка создания слота: %w", err)
	}

	return &slot, nil
}

// doctorLock is one acquisition of a doctor's registration lock. Writes to the
// lock document match on the owner token of that acquisition.
type doctorLock struct {
	locks *mongo.Collection
	id    string
	owner string
}

// renew extends the lock before the caller writes under it.
func (l *doctorLock) renew(ctx context.Context) error {
	res, err := l.locks.UpdateOne(ctx,
		bson.M{"_id": l.id, "owner": l.owner},
		bson.M{"$set": bson.M{"expires_at": time.Now().Add(slotLockTTL)}},
	)
	if err != nil {
		return fmt.Errorf("ошибка продления блокировки расписания врача: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrLockLost
	}
	return nil
}

func (l *doctorLock) release() {
	_, _ = l.locks.DeleteOne(context.Background(), bson.M{"_id": l.id, "owner": l.owner})
}

// acquireDoctorLock inserts a lock document keyed by doctor id. A duplicate key
// means another registration holds it; expired locks are removed by a TTL index.
func (r *SlotMongoRepo) acquireDoctorLock(ctx context.Context, doctorID string) (*doctorLock, error) {
	lock := &doctorLock{
		locks: r.locks,
		id:    "slot-registration:" + doctorID,
		owner: uuid.New().String(),
	}

	for attempt := 0; attempt < slotLockAttempts; attempt++ {
		now := time.Now()
		_, err := r.locks.InsertOne(ctx, lockDocument{
			ID:        lock.id,
			Owner:     lock.owner,
			ExpiresAt: now.Add(slotLockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return lock, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("ошибка блокировки расписания врача: %w", err)
		}

		// A holder that crashed leaves the lock until the TTL monitor runs.
		_, _ = r.locks.DeleteOne(ctx, bson.M{"_id": lock.id, "expires_at": bson.M{"$lt": now}})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(slotLockBackoff):
		}
	}

	return nil, ErrLockBusy
}

func (r *SlotMongoRepo) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	var doc slotDocument
	err := r.slots.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения слота: %w", err)
	}

	slot := doc.toDomain()
	return &slot, nil
}

func (r *SlotMongoRepo) ListUnbookedByDoctor(ctx context.Context, doctorID string) ([]domain.Slot, error) {
	return r.List(ctx, domain.SlotFilter{DoctorID: &doctorID, OnlyUnbooked: true})
}

func (r *SlotMongoRepo) List(ctx context.Context, filter domain.SlotFilter) ([]domain.Slot, error) {
	query := bson.M{}
	if filter.DoctorID != nil {
		query["doctor_id"] = *filter.DoctorID
	}
	if filter.HospitalID != nil {
		query["hospital_id"] = *filter.HospitalID
	}
	if filter.OnlyUnbooked {
		query["is_booked"] = false
	}

	startRange := bson.M{}
	if filter.StartFrom != nil {
		startRange["$gte"] = *filter.StartFrom
	}
	if filter.StartTo != nil {
		startRange["$lte"] = *filter.StartTo
	}
	if len(startRange) > 0 {
		query["start_time"] = startRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.slots.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка слотов: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []slotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка слотов: %w", err)
	}

	slots := make([]domain.Slot, 0, len(docs))
	for _, doc := range docs {
		slots = append(slots, doc.toDomain())
	}
	return slots, nil
}
