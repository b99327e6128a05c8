package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medslot/internal/domain"
)

const appointmentsCollection = "appointments"

type appointmentDocument struct {
	ID              string                   `bson:"_id"`
	PatientID       string                   `bson:"patient_id"`
	DoctorID        string                   `bson:"doctor_id"`
	HospitalID      string                   `bson:"hospital_id"`
	SlotID          string                   `bson:"slot_id"`
	ScheduledAt     time.Time                `bson:"scheduled_at"`
	FeePaid         primitive.Decimal128     `bson:"fee_paid"`
	DoctorRevenue   primitive.Decimal128     `bson:"doctor_revenue"`
	HospitalRevenue primitive.Decimal128     `bson:"hospital_revenue"`
	Status          domain.AppointmentStatus `bson:"status"`
	CreatedAt       time.Time                `bson:"created_at"`
	UpdatedAt       time.Time                `bson:"updated_at"`
}

func newAppointmentDocument(a domain.Appointment) (appointmentDocument, error) {
	fee, err := toDecimal128(a.FeePaid)
	if err != nil {
		return appointmentDocument{}, err
	}
	doctorRevenue, err := toDecimal128(a.DoctorRevenue)
	if err != nil {
		return appointmentDocument{}, err
	}
	hospitalRevenue, err := toDecimal128(a.HospitalRevenue)
	if err != nil {
		return appointmentDocument{}, err
	}

	return appointmentDocument{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		HospitalID:      a.HospitalID,
		SlotID:          a.SlotID,
		ScheduledAt:     a.ScheduledAt,
		FeePaid:         fee,
		DoctorRevenue:   doctorRevenue,
		HospitalRevenue: hospitalRevenue,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}, nil
}

func (d appointmentDocument) toDomain() (domain.Appointment, error) {
	fee, err := fromDecimal128(d.FeePaid)
	if err != nil {
		return domain.Appointment{}, err
	}
	doctorRevenue, err := fromDecimal128(d.DoctorRevenue)
	if err != nil {
		return domain.Appointment{}, err
	}
	hospitalRevenue, err := fromDecimal128(d.HospitalRevenue)
	if err != nil {
		return domain.Appointment{}, err
	}

	return domain.Appointment{
		ID:              d.ID,
		PatientID:       d.PatientID,
		DoctorID:        d.DoctorID,
		HospitalID:      d.HospitalID,
		SlotID:          d.SlotID,
		ScheduledAt:     d.ScheduledAt,
		FeePaid:         fee,
		DoctorRevenue:   doctorRevenue,
		HospitalRevenue: hospitalRevenue,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

type AppointmentMongoRepo struct {
	client       *mongo.Client
	slots        *mongo.Collection
	appointments *mongo.Collection
}

func NewAppointmentMongoRepository(db *mongo.Database) *AppointmentMongoRepo {
	return &AppointmentMongoRepo{
		client:       db.Client(),
		slots:        db.Collection(slotsCollection),
		appointments: db.Collection(appointmentsCollection),
	}
}

// BookSlot needs a replica set: the conditional update and the insert share one
// multi-document transaction.
func (r *AppointmentMongoRepo) BookSlot(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("ошибка начала сессии: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.claimAndInsert(sc, appointment)
	})
	if err != nil {
		return nil, err
	}

	booked := result.(domain.Appointment)
	return &booked, nil
}

func (r *AppointmentMongoRepo) claimAndInsert(ctx context.Context, appointment domain.Appointment) (domain.Appointment, error) {
	var claimed slotDocument
	err := r.slots.FindOneAndUpdate(ctx,
		bson.M{"_id": appointment.SlotID, "is_booked": false},
		bson.M{"$set": bson.M{
			"is_booked":            true,
			"booked_by_patient_id": appointment.PatientID,
			"updated_at":           appointment.CreatedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&claimed)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Appointment{}, fmt.Errorf("ошибка бронирования слота: %w", err)
		}

		count, err := r.slots.CountDocuments(ctx, bson.M{"_id": appointment.SlotID})
		if err != nil {
			return domain.Appointment{}, fmt.Errorf("ошибка проверки слота: %w", err)
		}
		if count == 0 {
			return domain.Appointment{}, domain.NewNotFoundError("слот", appointment.SlotID)
		}
		return domain.Appointment{}, domain.ErrSlotUnavailable
	}

	appointment.ScheduledAt = claimed.StartTime
	appointment.UpdatedAt = appointment.CreatedAt

	doc, err := newAppointmentDocument(appointment)
	if err != nil {
		return domain.Appointment{}, err
	}

	if _, err := r.appointments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Appointment{}, domain.ErrSlotUnavailable
		}
		return domain.Appointment{}, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentMongoRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var doc appointmentDocument
	if err := r.appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	a, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentMongoRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	query := bson.M{}
	if filter.PatientID != nil {
		query["patient_id"] = *filter.PatientID
	}
	if filter.DoctorID != nil {
		query["doctor_id"] = *filter.DoctorID
	}
	if filter.HospitalID != nil {
		query["hospital_id"] = *filter.HospitalID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: -1}})
	cursor, err := r.appointments.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []appointmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка записей: %w", err)
	}

	appointments := make([]domain.Appointment, 0, len(docs))
	for _, doc := range docs {
		a, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

func (r *AppointmentMongoRepo) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (bool, error) {
	res, err := r.appointments.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	return res.ModifiedCount == 1, nil
}
