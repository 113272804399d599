package db

import (
	"context"
	"log"
	"time"

	"mealsphere/globals"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection        *mongo.Collection
	OwnerCollection       *mongo.Collection
	MessCollection        *mongo.Collection
	EnrollmentCollection  *mongo.Collection
	ReservationCollection *mongo.Collection
	AttendanceCollection  *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := globals.EnvOr("MONGO_URI", "mongodb://localhost:27017")
	clientOptions := options.Client().ApplyURI(uri)

	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database(globals.EnvOr("MONGO_DB", "mealsphere"))
	UserCollection = database.Collection("users")
	OwnerCollection = database.Collection("messowners")
	MessCollection = database.Collection("messes")
	EnrollmentCollection = database.Collection("enrollments")
	ReservationCollection = database.Collection("reservations")
	AttendanceCollection = database.Collection("attendance")

	if err := EnsureIndexes(context.TODO()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
}

// EnsureIndexes creates the indexes the reservation rules depend on. The
// unique (userid, date) index on reservations is what makes concurrent
// double-booking impossible; everything else is lookup performance.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := ReservationCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// One enrollment per user, pending or accepted.
	_, err = EnrollmentCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// One ledger row per enrollment per business day.
	_, err = AttendanceCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "enrollmentid", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = MessCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "livelocation", Value: "2dsphere"}},
	})
	return err
}
