package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medslot/internal/domain"
)

const affiliationsCollection = "affiliations"

type affiliationDocument struct {
	ID              string               `bson:"_id"`
	DoctorID        string               `bson:"doctor_id"`
	HospitalID      string               `bson:"hospital_id"`
	DepartmentID    string               `bson:"department_id"`
	ConsultationFee primitive.Decimal128 `bson:"consultation_fee"`
	CreatedAt       time.Time            `bson:"created_at"`
}

func (d affiliationDocument) toDomain() (domain.Affiliation, error) {
	fee, err := fromDecimal128(d.ConsultationFee)
	if err != nil {
		return domain.Affiliation{}, err
	}
	return domain.Affiliation{
		ID:              d.ID,
		DoctorID:        d.DoctorID,
		HospitalID:      d.HospitalID,
		DepartmentID:    d.DepartmentID,
		ConsultationFee: fee,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("некорректная денежная сумма %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("некорректная денежная сумма %s: %w", v, err)
	}
	return d, nil
}

type AffiliationMongoRepo struct {
	collection *mongo.Collection
}

func NewAffiliationMongoRepository(db *mongo.Database) *AffiliationMongoRepo {
	return &AffiliationMongoRepo{collection: db.Collection(affiliationsCollection)}
}

func (r *AffiliationMongoRepo) Create(ctx context.Context, affiliation domain.Affiliation) error {
	fee, err := toDecimal128(affiliation.ConsultationFee)
	if err != nil {
		return err
	}

	_, err = r.collection.InsertOne(ctx, affiliationDocument{
		ID:              affiliation.ID,
		DoctorID:        affiliation.DoctorID,
		HospitalID:      affiliation.HospitalID,
		DepartmentID:    affiliation.DepartmentID,
		ConsultationFee: fee,
		CreatedAt:       affiliation.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("ошибка создания аффилиации: %w", err)
	}

	return nil
}

func (r *AffiliationMongoRepo) GetByID(ctx context.Context, id string) (*domain.Affiliation, error) {
	var doc affiliationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения аффилиации: %w", err)
	}

	a, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AffiliationMongoRepo) List(ctx context.Context, filter domain.AffiliationFilter) ([]domain.Affiliation, error) {
	query := bson.M{}
	if filter.DoctorID != nil {
		query["doctor_id"] = *filter.DoctorID
	}
	if filter.HospitalID != nil {
		query["hospital_id"] = *filter.HospitalID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка аффилиаций: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []affiliationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка аффилиаций: %w", err)
	}

	affiliations := make([]domain.Affiliation, 0, len(docs))
	for _, doc := range docs {
		a, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		affiliations = append(affiliations, a)
	}
	return affiliations, nil
}
