package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classbell/internal/models"
	"github.com/noah-isme/classbell/internal/timetable"
	appErrors "github.com/noah-isme/classbell/pkg/errors"
)

// TimetableRepository loads the weekly timetable from Postgres. It is an
// alternative to the JSON file source for deployments that already keep the
// schedule in a database.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

type timetableRow struct {
	DayOfWeek string `db:"day_of_week"`
	Course    string `db:"course"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
	Link      string `db:"link"`
}

// Weekly implements timetable.Source. Rows with malformed times or duplicate
// course ids on a weekday fail the load, same as the file source.
func (r *TimetableRepository) Weekly(ctx context.Context) (*timetable.Timetable, error) {
	query := "SELECT day_of_week, course, start_time, end_time, link FROM timetable_entries ORDER BY day_of_week, start_time"
	var rows []timetableRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimetableLoad.Code, appErrors.ErrTimetableLoad.Status, "failed to query timetable entries")
	}

	week := make(map[time.Weekday][]models.Session)
	for _, row := range rows {
		weekday, err := timetable.ParseWeekday(row.DayOfWeek)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrTimetableLoad.Code, appErrors.ErrTimetableLoad.Status, "unknown weekday in timetable entries")
		}
		start, err := models.ParseClockTime(row.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "bad start_time in timetable entries")
		}
		end, err := models.ParseClockTime(row.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "bad end_time in timetable entries")
		}
		week[weekday] = append(week[weekday], models.Session{
			Course: row.Course,
			Start:  start,
			End:    end,
			Link:   row.Link,
		})
	}

	return timetable.New(week)
}
