package attendance

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"mealsphere/db"
	"mealsphere/enrollment"
	"mealsphere/models"
	"mealsphere/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func mark(b bool) string {
	if b {
		return "present"
	}
	return "absent"
}

// HistoryPDF handles GET /api/owner/messes/:messId/attendance/history/:userId/pdf
// and returns the member's full ledger as a printable report.
func HistoryPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := utils.GetOwnerIDFromRequest(r)
	if ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messID := ps.ByName("messId")
	userID := ps.ByName("userId")

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	mess, code, msg := enrollment.OwnedMess(ctx, messID, ownerID)
	if code != 0 {
		http.Error(w, msg, code)
		return
	}

	_, records, err := memberRecords(ctx, messID, userID)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Enrollment not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var user models.User
	memberName := userID
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err == nil {
		memberName = user.Name
	}

	summary := Tally(records)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Mess: %s", mess.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Member: %s", memberName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days recorded: %d   Present: %d   Absent: %d",
		summary.TotalDays, summary.PresentDays, summary.AbsentDays))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(40, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Day meal", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Night meal", "1", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, rec := range records {
		pdf.CellFormat(40, 8, rec.Date.Format("02 Jan 2006"), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 8, mark(rec.AttendedDay), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 8, mark(rec.AttendedNight), "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=attendance-"+userID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
