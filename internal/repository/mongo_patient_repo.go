package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
)

type mongoPatientRepo struct {
	col *mongo.Collection
}

func NewMongoPatientRepo(db *mongo.Database) PatientRepository {
	col := db.Collection("Patient")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoPatientRepo{col: col}
}

func (r *mongoPatientRepo) Create(ctx context.Context, p *models.Patient) error {
	_, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrAlreadyRegistered
	}
	return err
}

func (r *mongoPatientRepo) FindByEmail(ctx context.Context, email string) (*models.Patient, error) {
	var p models.Patient
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPatientRepo) FindByEmails(ctx context.Context, emails []string) ([]models.Patient, error) {
	cur, err := r.col.Find(ctx, bson.M{"email": bson.M{"$in": emails}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Patient
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoPatientRepo) UpdateHealthDetails(ctx context.Context, email string, hd models.HealthDetails) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"health_details": hd}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoPatientRepo) AppendAppointment(ctx context.Context, email string, appt models.Appointment) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$push": bson.M{"appointments": appt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoPatientRepo) SetAppointmentStatus(ctx context.Context, email, appointmentID string, status models.AppointmentStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email, "appointments.appointment_id": appointmentID},
		bson.M{"$set": bson.M{"appointments.$.status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoPatientRepo) SetAppointmentSlot(ctx context.Context, email, appointmentID, date, timeSlot string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email, "appointments.appointment_id": appointmentID},
		bson.M{"$set": bson.M{
			"appointments.$.appointment_date": date,
			"appointments.$.appointment_time": timeSlot,
			"appointments.$.status":           models.StatusPending,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoPatientRepo) PullAppointment(ctx context.Context, email, appointmentID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$pull": bson.M{"appointments": bson.M{"appointment_id": appointmentID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
