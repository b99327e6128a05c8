package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medslot/internal/domain"
)

const (
	doctorProfilesCollection = "doctor_profiles"
	hospitalsCollection      = "hospitals"
	departmentsCollection    = "departments"
)

type doctorProfileDocument struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Specializations   []string  `bson:"specializations"`
	YearsOfExperience int       `bson:"years_of_experience"`
	Qualifications    string    `bson:"qualifications"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

type hospitalDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Location  string    `bson:"location"`
	CreatedAt time.Time `bson:"created_at"`
}

type departmentDocument struct {
	ID         string    `bson:"_id"`
	HospitalID string    `bson:"hospital_id"`
	Name       string    `bson:"name"`
	CreatedAt  time.Time `bson:"created_at"`
}

type DirectoryMongoRepo struct {
	profiles    *mongo.Collection
	hospitals   *mongo.Collection
	departments *mongo.Collection
}

func NewDirectoryMongoRepository(db *mongo.Database) *DirectoryMongoRepo {
	return &DirectoryMongoRepo{
		profiles:    db.Collection(doctorProfilesCollection),
		hospitals:   db.Collection(hospitalsCollection),
		departments: db.Collection(departmentsCollection),
	}
}

func (r *DirectoryMongoRepo) UpsertDoctorProfile(ctx context.Context, profile domain.DoctorProfile) error {
	_, err := r.profiles.UpdateOne(ctx,
		bson.M{"_id": profile.ID},
		bson.M{"$set": bson.M{
			"name":                profile.Name,
			"specializations":     profile.Specializations,
			"years_of_experience": profile.YearsOfExperience,
			"qualifications":      profile.Qualifications,
			"updated_at":          profile.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения профиля врача: %w", err)
	}

	return nil
}

func (r *DirectoryMongoRepo) GetDoctorProfile(ctx context.Context, id string) (*domain.DoctorProfile, error) {
	var doc doctorProfileDocument
	if err := r.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}

	return &domain.DoctorProfile{
		ID:                doc.ID,
		Name:              doc.Name,
		Specializations:   doc.Specializations,
		YearsOfExperience: doc.YearsOfExperience,
		Qualifications:    doc.Qualifications,
		UpdatedAt:         doc.UpdatedAt,
	}, nil
}

func (r *DirectoryMongoRepo) CreateHospital(ctx context.Context, hospital domain.Hospital) error {
	_, err := r.hospitals.InsertOne(ctx, hospitalDocument(hospital))
	if err != nil {
		return fmt.Errorf("ошибка создания больницы: %w", err)
	}
	return nil
}

func (r *DirectoryMongoRepo) GetHospital(ctx context.Context, id string) (*domain.Hospital, error) {
	var doc hospitalDocument
	if err := r.hospitals.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения больницы: %w", err)
	}

	h := domain.Hospital(doc)
	return &h, nil
}

func (r *DirectoryMongoRepo) ListHospitals(ctx context.Context) ([]domain.Hospital, error) {
	cursor, err := r.hospitals.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка больниц: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []hospitalDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка больниц: %w", err)
	}

	hospitals := make([]domain.Hospital, 0, len(docs))
	for _, doc := range docs {
		hospitals = append(hospitals, domain.Hospital(doc))
	}
	return hospitals, nil
}

func (r *DirectoryMongoRepo) CreateDepartment(ctx context.Context, department domain.Department) error {
	_, err := r.departments.InsertOne(ctx, departmentDocument(department))
	if err != nil {
		return fmt.Errorf("ошибка создания отделения: %w", err)
	}
	return nil
}

func (r *DirectoryMongoRepo) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	var doc departmentDocument
	if err := r.departments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения отделения: %w", err)
	}

	d := domain.Department(doc)
	return &d, nil
}

func (r *DirectoryMongoRepo) ListDepartments(ctx context.Context, hospitalID string) ([]domain.Department, error) {
	cursor, err := r.departments.Find(ctx,
		bson.M{"hospital_id": hospitalID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отделений: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []departmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка отделений: %w", err)
	}

	departments := make([]domain.Department, 0, len(docs))
	for _, doc := range docs {
		departments = append(departments, domain.Department(doc))
	}
	return departments, nil
}
