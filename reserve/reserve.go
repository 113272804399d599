// Package reserve is the reservation reconciliation engine: it owns every
// write to the reservations collection and keeps the mess attendance
// counters and the membership ledger in step with it. The reservation
// document is the source of truth; counters and ledger rows are projections
// that the nightly jobs can rebuild.
package reserve

import (
	"context"
	"log"
	"time"

	"mealsphere/db"
	"mealsphere/dayclock"
	"mealsphere/models"
	"mealsphere/mq"
	"mealsphere/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindToday returns the user's reservation for the current business day at
// any mess, or nil if none exists.
func FindToday(ctx context.Context, userID string) (*models.Reservation, error) {
	today := dayclock.Today()
	var res models.Reservation
	err := db.ReservationCollection.FindOne(ctx, bson.M{
		"userid": userID,
		"date":   today,
	}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ReserveSlot books one meal slot for the user at the given mess on today's
// business day, creating or upgrading the reservation document. The write
// order is fixed: reservation first, then the counter and ledger
// projections, which are best-effort and self-healed by the nightly jobs.
func ReserveSlot(ctx context.Context, userID, messID string, slot models.MealType) (*models.Reservation, error) {
	now := time.Now()
	if !dayclock.BeforeCutoff(now, slot) {
		return nil, ErrCutoffPassed
	}
	today := dayclock.BusinessDay(now)

	// Two rounds: a concurrent insert under the unique (userid, date) index
	// surfaces as a duplicate-key or a missed conditional update, and is
	// resolved by re-reading and replanning once.
	var applied *models.Reservation
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := FindToday(ctx, userID)
		if err != nil {
			return nil, err
		}

		plan, err := planReserve(existing, messID, slot)
		if err != nil {
			return nil, err
		}

		switch plan.action {
		case actionCreate:
			res := models.Reservation{
				ReservationID: utils.GenerateID(),
				UserID:        userID,
				MessID:        messID,
				MealType:      plan.result,
				Date:          today,
				CreatedAt:     now,
			}
			if _, err := db.ReservationCollection.InsertOne(ctx, res); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					continue // lost the race, replan against the winner
				}
				return nil, err
			}
			applied = &res

		case actionUpgrade:
			// Conditional on the meal type we planned against, so two
			// concurrent upgrades cannot both count.
			upd, err := db.ReservationCollection.UpdateOne(ctx,
				bson.M{"reservationid": existing.ReservationID, "mealType": existing.MealType},
				bson.M{"$set": bson.M{"mealType": plan.result}},
			)
			if err != nil {
				return nil, err
			}
			if upd.MatchedCount == 0 {
				continue
			}
			upgraded := *existing
			upgraded.MealType = plan.result
			applied = &upgraded
		}
		break
	}
	if applied == nil {
		return nil, ErrSlotAlreadyReserved
	}

	bumpCounter(ctx, messID, slot, +1)
	markLedger(ctx, userID, messID, today, slot, true)
	return applied, nil
}

// CancelSlot removes one slot from the caller's today-dated reservation,
// deleting the document if that was its only slot or demoting "both" to the
// remaining one.
func CancelSlot(ctx context.Context, reservationID, userID string, slot models.MealType) error {
	if !slot.ValidSlot() {
		return ErrInvalidSlot
	}

	var res models.Reservation
	err := db.ReservationCollection.FindOne(ctx, bson.M{
		"reservationid": reservationID,
		"userid":        userID,
	}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// Wall clock read at execution time, not request-arrival time; a queued
	// cancellation must not slip past the window.
	now := time.Now()
	today := dayclock.BusinessDay(now)
	if !res.Date.Equal(today) {
		return ErrNotToday
	}
	if !dayclock.BeforeCutoff(now, slot) {
		return ErrCutoffPassed
	}

	plan, err := planCancel(res, slot)
	if err != nil {
		return err
	}

	if plan.deleteDoc {
		del, err := db.ReservationCollection.DeleteOne(ctx, bson.M{
			"reservationid": res.ReservationID,
			"mealType":      res.MealType,
		})
		if err != nil {
			return err
		}
		if del.DeletedCount == 0 {
			return ErrNotFound
		}
	} else {
		upd, err := db.ReservationCollection.UpdateOne(ctx,
			bson.M{"reservationid": res.ReservationID, "mealType": models.MealBoth},
			bson.M{"$set": bson.M{"mealType": plan.remaining}},
		)
		if err != nil {
			return err
		}
		if upd.MatchedCount == 0 {
			return ErrNotFound
		}
	}

	bumpCounter(ctx, res.MessID, slot, -1)
	markLedger(ctx, userID, res.MessID, today, slot, false)
	return nil
}

// counterField maps a slot to the mess counter it drives.
func counterField(slot models.MealType) string {
	if slot == models.MealNight {
		return "attendingTodayNight"
	}
	return "attendingTodayDay"
}

// ledgerUpdate builds the attendance upsert for one slot decision. Only the
// acted-on slot's flag is written; the other flag is seeded false on insert
// and left alone on update, so cancelling one slot never clears the other.
func ledgerUpdate(userID, messID string, slot models.MealType, attended bool) bson.M {
	field := "attendedDay"
	otherField := "attendedNight"
	if slot == models.MealNight {
		field, otherField = otherField, field
	}
	return bson.M{
		"$set": bson.M{field: attended},
		"$setOnInsert": bson.M{
			"userid":   userID,
			"messid":   messID,
			otherField: false,
		},
	}
}

// bumpCounter applies an atomic delta to the mess's slot counter and emits
// the fresh totals to the live feed. Counter trouble is logged, never
// surfaced: the nightly recompute squares it away.
func bumpCounter(ctx context.Context, messID string, slot models.MealType, delta int) {
	field := counterField(slot)

	var mess models.Mess
	err := db.MessCollection.FindOneAndUpdate(ctx,
		bson.M{"messid": messID},
		bson.M{"$inc": bson.M{field: delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mess)
	if err != nil {
		log.Printf("[reserve] counter update failed for mess %s: %v", messID, err)
		return
	}

	mq.EmitCounter(ctx, mq.CounterEvent{
		MessID:         messID,
		Slot:           slot,
		Delta:          delta,
		AttendingDay:   mess.AttendingTodayDay,
		AttendingNight: mess.AttendingTodayNight,
	})
}

// markLedger mirrors the slot decision into the attendance ledger when the
// acting user is an accepted member of the mess. Best-effort projection.
func markLedger(ctx context.Context, userID, messID string, day time.Time, slot models.MealType, attended bool) {
	var enr models.Enrollment
	err := db.EnrollmentCollection.FindOne(ctx, bson.M{
		"userid":     userID,
		"messid":     messID,
		"isAccepted": true,
	}).Decode(&enr)
	if err == mongo.ErrNoDocuments {
		return // walk-in; reservation alone carries the record
	}
	if err != nil {
		log.Printf("[reserve] enrollment lookup failed for user %s: %v", userID, err)
		return
	}

	_, err = db.AttendanceCollection.UpdateOne(ctx,
		bson.M{"enrollmentid": enr.EnrollmentID, "date": day},
		ledgerUpdate(userID, messID, slot, attended),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[reserve] ledger upsert failed for enrollment %s: %v", enr.EnrollmentID, err)
	}
}
