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

type mongoDoctorRepo struct {
	col *mongo.Collection
}

func NewMongoDoctorRepo(db *mongo.Database) DoctorRepository {
	col := db.Collection("Doctor")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &mongoDoctorRepo{col: col}
}

func (r *mongoDoctorRepo) Create(ctx context.Context, d *models.Doctor) error {
	_, err := r.col.InsertOne(ctx, d)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrAlreadyRegistered
	}
	return err
}

func (r *mongoDoctorRepo) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var d models.Doctor
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *mongoDoctorRepo) FindByAppointmentID(ctx context.Context, appointmentID string) (*models.Doctor, error) {
	var d models.Doctor
	err := r.col.FindOne(ctx, bson.M{"appointments.appointment_id": appointmentID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *mongoDoctorRepo) List(ctx context.Context) ([]models.Doctor, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Doctor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoDoctorRepo) AppendAppointmentIfFree(ctx context.Context, email string, appt models.Appointment) error {
	// The filter rejects the doctor document when any non-Cancelled
	// appointment already holds the slot, so guard and append are one
	// atomic single-document update.
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"email": email,
			"appointments": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"appointment_date": appt.Date,
				"appointment_time": appt.Time,
				"status":           bson.M{"$ne": models.StatusCancelled},
			}}},
		},
		bson.M{"$push": bson.M{"appointments": appt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either no such doctor or the slot is held; disambiguate.
		if _, ferr := r.FindByEmail(ctx, email); ferr != nil {
			return ferr
		}
		return apperrors.ErrSlotTaken
	}
	return nil
}

func (r *mongoDoctorRepo) SetAppointmentStatus(ctx context.Context, email, appointmentID string, status models.AppointmentStatus) error {
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

func (r *mongoDoctorRepo) SetAppointmentSlotIfFree(ctx context.Context, email, appointmentID, date, timeSlot string) error {
	// Same guard as AppendAppointmentIfFree, except the appointment being
	// moved does not count against its own target slot.
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"email":                       email,
			"appointments.appointment_id": appointmentID,
			"appointments": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"appointment_id":   bson.M{"$ne": appointmentID},
				"appointment_date": date,
				"appointment_time": timeSlot,
				"status":           bson.M{"$ne": models.StatusCancelled},
			}}},
		},
		bson.M{"$set": bson.M{
			"appointments.$[a].appointment_date": date,
			"appointments.$[a].appointment_time": timeSlot,
			"appointments.$[a].status":           models.StatusPending,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"a.appointment_id": appointmentID}},
		}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// No such doctor, no such appointment, or the slot is held.
		d, ferr := r.FindByEmail(ctx, email)
		if ferr != nil {
			return ferr
		}
		for i := range d.Appointments {
			if d.Appointments[i].AppointmentID == appointmentID {
				return apperrors.ErrSlotTaken
			}
		}
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoDoctorRepo) PullAppointment(ctx context.Context, email, appointmentID string) error {
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

func (r *mongoDoctorRepo) AddPatientLink(ctx context.Context, email string, link models.PatientLink) error {
	// $addToSet keys on the whole subdocument; filter on email instead so a
	// renamed patient cannot produce a second link.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": email, "patients.email": bson.M{"$ne": link.Email}},
		bson.M{"$push": bson.M{"patients": link}},
	)
	if err != nil {
		return err
	}
	// MatchedCount == 0 means the link already exists (or no such doctor,
	// which earlier lookups have ruled out); both are fine.
	_ = res
	return nil
}
