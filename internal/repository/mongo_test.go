package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"medslot/internal/domain"
)

func slotBSON(id string, start, end time.Time, booked bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "doctor_id", Value: "doctor-1"},
		{Key: "hospital_id", Value: "hospital-a"},
		{Key: "start_time", Value: start},
		{Key: "end_time", Value: end},
		{Key: "is_booked", Value: booked},
		{Key: "created_at", Value: start},
		{Key: "updated_at", Value: start},
	}
}

// lockOwners returns the owner token of each lock insert and of each lock delete
// filter, in command order.
func lockOwners(mt *mtest.T) (inserted, released []string) {
	for _, evt := range mt.GetAllStartedEvents() {
		switch evt.CommandName {
		case "insert":
			if evt.Command.Lookup("insert").StringValue() != locksCollection {
				continue
			}
			inserted = append(inserted, evt.Command.Lookup("documents", "0", "owner").StringValue())
		case "delete":
			owner, ok := evt.Command.Lookup("deletes", "0", "q", "owner").StringValueOK()
			if ok {
				released = append(released, owner)
			}
		}
	}
	return inserted, released
}

func TestSlotMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "medslot." + slotsCollection

	mt.Run("create under doctor lock", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotBSON("slot-1", slotStart, slotEnd, false)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		var seen []domain.Slot
		slot, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
			seen = existing
			return newSlot("slot-2", slotEnd, slotEnd.Add(time.Hour)), nil
		})

		require.NoError(mt, err)
		assert.Equal(mt, "slot-2", slot.ID)
		require.Len(mt, seen, 1)
		assert.True(mt, seen[0].StartTime.Equal(slotStart))

		inserted, released := lockOwners(mt)
		require.Len(mt, inserted, 1)
		assert.NotEmpty(mt, inserted[0])
		assert.Equal(mt, inserted, released)
	})

	mt.Run("lock taken over before insert", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(),
		)

		_, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
			return newSlot("slot-2", slotStart, slotEnd), nil
		})
		assert.ErrorIs(mt, err, ErrLockLost)

		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "insert" {
				assert.NotEqual(mt, slotsCollection, evt.Command.Lookup("insert").StringValue())
			}
		}
	})

	mt.Run("builder rejection releases lock", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotBSON("slot-1", slotStart, slotEnd, false)),
			mtest.CreateSuccessResponse(),
		)

		_, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
			return domain.Slot{}, &domain.OverlapError{SlotID: existing[0].ID}
		})

		assert.ErrorIs(mt, err, domain.ErrSlotOverlap)
	})

	mt.Run("lock backend failure", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))

		_, err := repo.CreateExclusive(context.Background(), "doctor-1", func(existing []domain.Slot) (domain.Slot, error) {
			mt.Fatal("builder must not run without the lock")
			return domain.Slot{}, nil
		})

		assert.Error(mt, err)
	})

	mt.Run("list day bounds inclusive", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		from := time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)
		to := from.Add(24*time.Hour - time.Millisecond)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			slotBSON("slot-open", from, from.Add(30*time.Minute), false),
			slotBSON("slot-close", to, to.Add(time.Millisecond), false),
		))

		slots, err := repo.List(context.Background(), domain.SlotFilter{
			OnlyUnbooked: true,
			StartFrom:    &from,
			StartTo:      &to,
		})
		require.NoError(mt, err)
		require.Len(mt, slots, 2)
		assert.True(mt, slots[1].StartTime.Equal(to))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("filter", "start_time", "$gte").Time().Equal(from))
		assert.True(mt, evt.Command.Lookup("filter", "start_time", "$lte").Time().Equal(to))
		assert.False(mt, evt.Command.Lookup("filter", "is_booked").Boolean())
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewSlotMongoRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotBSON("slot-1", slotStart, slotEnd, true)))
		slot, err := repo.GetByID(context.Background(), "slot-1")
		require.NoError(mt, err)
		require.NotNil(mt, slot)
		assert.True(mt, slot.IsBooked)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		slot, err = repo.GetByID(context.Background(), "missing")
		require.NoError(mt, err)
		assert.Nil(mt, slot)
	})
}

func TestAffiliationMongoRepo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decimal fee", func(mt *mtest.T) {
		repo := NewAffiliationMongoRepository(mt.DB)

		fee, err := primitive.ParseDecimal128("1250.50")
		require.NoError(mt, err)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "medslot."+affiliationsCollection, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "aff-1"},
			{Key: "doctor_id", Value: "doctor-1"},
			{Key: "hospital_id", Value: "hospital-a"},
			{Key: "department_id", Value: "dep-1"},
			{Key: "consultation_fee", Value: fee},
			{Key: "created_at", Value: slotStart},
		}))

		a, err := repo.GetByID(context.Background(), "aff-1")
		require.NoError(mt, err)
		require.NotNil(mt, a)
		assert.True(mt, a.ConsultationFee.Equal(decimal.RequireFromString("1250.5")))
	})
}

func TestAppointmentMongoRepo_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("transition applied once", func(mt *mtest.T) {
		repo := NewAppointmentMongoRepository(mt.DB)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		updated, err := repo.UpdateStatus(context.Background(), "appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted)
		require.NoError(mt, err)
		assert.True(mt, updated)

		updated, err = repo.UpdateStatus(context.Background(), "appointment-1", domain.AppointmentStatusBooked, domain.AppointmentStatusCompleted)
		require.NoError(mt, err)
		assert.False(mt, updated)
	})
}
