// Package jobs holds the nightly maintenance operations. Every job is a
// plain idempotent function keyed on the canonical business day, so a
// crashed or duplicated run never double-counts; the scheduler and the
// manual trigger endpoints call the same code.
package jobs

import (
	"context"
	"log"
	"math/rand"
	"strconv"
	"time"

	"mealsphere/db"
	"mealsphere/dayclock"
	"mealsphere/globals"
	"mealsphere/models"
	"mealsphere/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReconcileAttendance re-derives the attendance ledger for one business day
// from the reservations that existed on it. The request path writes the same
// rows eagerly; this pass repairs any projection that was lost to partial
// failure, and records explicit absences for members who never reserved.
// Upserts on the unique (enrollmentid, date) key make re-runs no-ops.
func ReconcileAttendance(ctx context.Context, day time.Time) error {
	day = dayclock.BusinessDay(day)

	cur, err := db.ReservationCollection.Find(ctx, bson.M{"date": day})
	if err != nil {
		return err
	}
	byUser := map[string]models.Reservation{}
	for cur.Next(ctx) {
		var res models.Reservation
		if err := cur.Decode(&res); err == nil {
			byUser[res.UserID] = res
		}
	}
	cur.Close(ctx)
	if err := cur.Err(); err != nil {
		return err
	}

	enrCur, err := db.EnrollmentCollection.Find(ctx, bson.M{"isAccepted": true})
	if err != nil {
		return err
	}
	defer enrCur.Close(ctx)

	var updates []mongo.WriteModel
	for enrCur.Next(ctx) {
		var enr models.Enrollment
		if err := enrCur.Decode(&enr); err != nil {
			continue
		}

		attendedDay, attendedNight := false, false
		// Reservations at other messes do not count as attendance here.
		if res, ok := byUser[enr.UserID]; ok && res.MessID == enr.MessID {
			attendedDay = res.MealType.Covers(models.MealDay)
			attendedNight = res.MealType.Covers(models.MealNight)
		}

		updates = append(updates, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"enrollmentid": enr.EnrollmentID, "date": day}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"attendedDay":   attendedDay,
					"attendedNight": attendedNight,
				},
				"$setOnInsert": bson.M{
					"userid": enr.UserID,
					"messid": enr.MessID,
				},
			}).
			SetUpsert(true))
	}
	if err := enrCur.Err(); err != nil {
		return err
	}

	if len(updates) == 0 {
		return nil
	}
	_, err = db.AttendanceCollection.BulkWrite(ctx, updates)
	return err
}

// PurgeStaleReservations deletes every reservation dated strictly before
// the current business day. Re-running is a no-op.
func PurgeStaleReservations(ctx context.Context) (int64, error) {
	res, err := db.ReservationCollection.DeleteMany(ctx, bson.M{
		"date": bson.M{"$lt": dayclock.Today()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ResetDailyCounters recomputes every mess's attending counters from the
// live reservation counts for today, rather than blindly zeroing them. Any
// drift a partial failure introduced during the day is squared away here.
func ResetDailyCounters(ctx context.Context) error {
	today := dayclock.Today()

	cur, err := db.MessCollection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"messid": 1}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mess models.Mess
		if err := cur.Decode(&mess); err != nil {
			continue
		}

		dayCount, err := db.ReservationCollection.CountDocuments(ctx, bson.M{
			"messid":   mess.MessID,
			"date":     today,
			"mealType": bson.M{"$in": []models.MealType{models.MealDay, models.MealBoth}},
		})
		if err != nil {
			return err
		}
		nightCount, err := db.ReservationCollection.CountDocuments(ctx, bson.M{
			"messid":   mess.MessID,
			"date":     today,
			"mealType": bson.M{"$in": []models.MealType{models.MealNight, models.MealBoth}},
		})
		if err != nil {
			return err
		}

		if _, err := db.MessCollection.UpdateOne(ctx,
			bson.M{"messid": mess.MessID},
			bson.M{"$set": bson.M{
				"attendingTodayDay":   dayCount,
				"attendingTodayNight": nightCount,
			}},
		); err != nil {
			return err
		}
	}
	return cur.Err()
}

// SynthMode controls SynthesizeDailyReservations. "off" is the production
// default: members book their own meals and no bookings are fabricated.
// "random" exists for demo and load-test environments only.
func SynthMode() string {
	return globals.EnvOr("SYNTH_MODE", "off")
}

// chooseSlot picks the synthetic slot for one member in random mode. It
// returns "" for the skip case. "both" is deliberately not generated: that
// state only arises from two sequential slot actions.
func chooseSlot(rng *rand.Rand) models.MealType {
	switch rng.Intn(3) {
	case 0:
		return models.MealDay
	case 1:
		return models.MealNight
	default:
		return ""
	}
}

// SynthesizeDailyReservations fabricates today's reservations for accepted
// members when SYNTH_MODE=random. Previously synthesized rows for today are
// removed first so a re-run cannot double-count, and user-made reservations
// are never touched. Counters are recomputed afterwards so the synthetic
// rows show up on dashboards.
func SynthesizeDailyReservations(ctx context.Context) (int, error) {
	if SynthMode() != "random" {
		return 0, nil
	}

	today := dayclock.Today()
	if _, err := db.ReservationCollection.DeleteMany(ctx, bson.M{
		"date":      today,
		"synthetic": true,
	}); err != nil {
		return 0, err
	}

	cur, err := db.EnrollmentCollection.Find(ctx, bson.M{"isAccepted": true})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()
	var docs []interface{}
	for cur.Next(ctx) {
		var enr models.Enrollment
		if err := cur.Decode(&enr); err != nil {
			continue
		}
		slot := chooseSlot(rng)
		if slot == "" {
			continue
		}
		docs = append(docs, models.Reservation{
			ReservationID: utils.GenerateID(),
			UserID:        enr.UserID,
			MessID:        enr.MessID,
			MealType:      slot,
			Date:          today,
			Synthetic:     true,
			CreatedAt:     now,
		})
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	inserted := 0
	if len(docs) > 0 {
		// Unordered so members who already booked for themselves (unique
		// userid+date) are skipped rather than aborting the batch.
		res, err := db.ReservationCollection.InsertMany(ctx, docs,
			options.InsertMany().SetOrdered(false))
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return 0, err
		}
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
	}

	if err := ResetDailyCounters(ctx); err != nil {
		log.Printf("[jobs] counter recompute after synthesis failed: %v", err)
	}
	return inserted, nil
}

// RetentionDays is how long an enrollment lives before the expiry job
// removes it, regardless of standing. Blunt by business decision; see the
// deployment notes before changing.
func RetentionDays() int {
	v := globals.EnvOr("ENROLLMENT_RETENTION_DAYS", "30")
	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 30
	}
	return days
}

// ExpireStaleEnrollments deletes enrollments older than the retention
// window and detaches the affected users from their mess. Ledger rows are
// kept for historical reporting.
func ExpireStaleEnrollments(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -RetentionDays())

	cur, err := db.EnrollmentCollection.Find(ctx, bson.M{
		"joinedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	var expired []models.Enrollment
	for cur.Next(ctx) {
		var enr models.Enrollment
		if err := cur.Decode(&enr); err == nil {
			expired = append(expired, enr)
		}
	}
	cur.Close(ctx)
	if err := cur.Err(); err != nil {
		return 0, err
	}

	var removed int64
	for _, enr := range expired {
		if _, err := db.EnrollmentCollection.DeleteOne(ctx, bson.M{"enrollmentid": enr.EnrollmentID}); err != nil {
			log.Printf("[jobs] failed to expire enrollment %s: %v", enr.EnrollmentID, err)
			continue
		}
		removed++
		if _, err := db.UserCollection.UpdateOne(ctx,
			bson.M{"userid": enr.UserID},
			bson.M{"$set": bson.M{"role": "daily"}, "$unset": bson.M{"messid": ""}},
		); err != nil {
			log.Printf("[jobs] failed to detach user %s: %v", enr.UserID, err)
		}
	}
	return removed, nil
}
