package repository

import (
	"context"
	"time"

	"fleet-management/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TripFilter narrows trip list queries. Zero values mean "no filter".
type TripFilter struct {
	Status    string
	DriverID  *primitive.ObjectID
	VehicleID *primitive.ObjectID
}

func (f TripFilter) toBSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DriverID != nil {
		filter["driver_id"] = *f.DriverID
	}
	if f.VehicleID != nil {
		filter["vehicle_id"] = *f.VehicleID
	}
	return filter
}

// TripRepository wraps the trips collection. Unlike the other
// repositories its methods take an explicit context so that the overlap
// check and the insert of trip creation can share a session
// transaction.
type TripRepository struct {
	collection *mongo.Collection
}

func NewTripRepository(db *mongo.Database) *TripRepository {
	return &TripRepository{
		collection: db.Collection("trips"),
	}
}

func (r *TripRepository) Insert(ctx context.Context, trip *models.Trip) error {
	result, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return err
	}

	trip.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *TripRepository) FindByID(ctx context.Context, id string) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var trip models.Trip
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return &trip, nil
}

// FindActiveByVehicle returns every trip for the vehicle whose status
// is scheduled or in_progress, excluding excludeID when non-nil. The
// overlap checker scans the result; the synchronizer only asks whether
// it is empty.
func (r *TripRepository) FindActiveByVehicle(ctx context.Context, vehicleID primitive.ObjectID, excludeID *primitive.ObjectID) ([]*models.Trip, error) {
	filter := bson.M{
		"vehicle_id": vehicleID,
		"status":     bson.M{"$in": models.ActiveTripStatuses},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []*models.Trip
	for cursor.Next(ctx) {
		var trip models.Trip
		if err := cursor.Decode(&trip); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}

	return trips, cursor.Err()
}

// UpdateFields applies a partial update and returns the new document.
// unset may be nil.
func (r *TripRepository) UpdateFields(ctx context.Context, id string, set bson.M, unset bson.M) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	set["updated_at"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Trip
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *TripRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrTripNotFound
	}

	return nil
}

// Find returns a page of trips with vehicle, driver and creator
// references resolved, sorted by start time descending.
func (r *TripRepository) Find(ctx context.Context, filter TripFilter, skip, limit int) ([]*models.PopulatedTrip, error) {
	pipeline := populatePipeline(filter.toBSON())
	pipeline = append(pipeline,
		bson.M{"$sort": bson.M{"start_time": -1}},
		bson.M{"$skip": skip},
		bson.M{"$limit": limit},
	)

	return r.aggregateTrips(ctx, pipeline)
}

func (r *TripRepository) FindByIDPopulated(ctx context.Context, id string) (*models.PopulatedTrip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	trips, err := r.aggregateTrips(ctx, populatePipeline(bson.M{"_id": objectID}))
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, ErrTripNotFound
	}

	return trips[0], nil
}

// FindOverdueScheduled returns scheduled trips whose start time has
// already passed. Consumed by the alert scan.
func (r *TripRepository) FindOverdueScheduled(ctx context.Context, now time.Time) ([]*models.PopulatedTrip, error) {
	filter := bson.M{
		"status":     models.TripStatusScheduled,
		"start_time": bson.M{"$lt": now},
	}

	return r.aggregateTrips(ctx, populatePipeline(filter))
}

func (r *TripRepository) Count(ctx context.Context, filter TripFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.toBSON())
}

// WithTransaction runs fn inside a session transaction with snapshot
// read concern and majority write concern. Requires a replica set;
// closes the check-then-insert race on trip creation.
func (r *TripRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	client := r.collection.Database().Client()

	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)

	return err
}

func populatePipeline(match bson.M) []bson.M {
	return []bson.M{
		{"$match": match},
		{"$lookup": bson.M{
			"from":         "vehicles",
			"localField":   "vehicle_id",
			"foreignField": "_id",
			"as":           "vehicle",
		}},
		{"$unwind": bson.M{"path": "$vehicle", "preserveNullAndEmptyArrays": true}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "driver_id",
			"foreignField": "_id",
			"as":           "driver",
		}},
		{"$unwind": bson.M{"path": "$driver", "preserveNullAndEmptyArrays": true}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "created_by",
			"foreignField": "_id",
			"as":           "created_by_user",
		}},
		{"$unwind": bson.M{"path": "$created_by_user", "preserveNullAndEmptyArrays": true}},
	}
}

func (r *TripRepository) aggregateTrips(ctx context.Context, pipeline []bson.M) ([]*models.PopulatedTrip, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []*models.PopulatedTrip
	for cursor.Next(ctx) {
		var trip models.PopulatedTrip
		if err := cursor.Decode(&trip); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}

	return trips, cursor.Err()
}
