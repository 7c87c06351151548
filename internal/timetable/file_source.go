package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/classbell/internal/models"
	appErrors "github.com/noah-isme/classbell/pkg/errors"
)

// Source yields the weekly timetable from an external store.
type Source interface {
	Weekly(ctx context.Context) (*Timetable, error)
}

// fileEntry mirrors one session object in weekly.json.
type fileEntry struct {
	Course    string `json:"course" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Link      string `json:"link" validate:"omitempty,url"`
}

// FileSource loads the timetable from a JSON file keyed by weekday name.
type FileSource struct {
	path     string
	validate *validator.Validate
}

// NewFileSource constructs a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, validate: validator.New()}
}

// Weekly reads and validates the file. Any malformed entry is fatal: the
// process cannot run against a timetable it only half understands.
func (s *FileSource) Weekly(ctx context.Context) (*Timetable, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimetableLoad.Code, appErrors.ErrTimetableLoad.Status, "failed to read timetable file")
	}

	var week map[string][]fileEntry
	if err := json.Unmarshal(raw, &week); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimetableLoad.Code, appErrors.ErrTimetableLoad.Status, "failed to parse timetable file")
	}

	days := make(map[time.Weekday][]models.Session, len(week))
	for name, entries := range week {
		weekday, err := ParseWeekday(name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrTimetableLoad.Code, appErrors.ErrTimetableLoad.Status, "unknown weekday in timetable file")
		}
		sessions := make([]models.Session, 0, len(entries))
		for _, entry := range entries {
			session, err := s.toSession(entry)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, session)
		}
		days[weekday] = sessions
	}

	return New(days)
}

func (s *FileSource) toSession(entry fileEntry) (models.Session, error) {
	entry.Link = strings.TrimSpace(entry.Link)
	if err := s.validate.Struct(entry); err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid timetable entry for course %q", entry.Course))
	}
	start, err := models.ParseClockTime(entry.StartTime)
	if err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("course %q: bad startTime", entry.Course))
	}
	end, err := models.ParseClockTime(entry.EndTime)
	if err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("course %q: bad endTime", entry.Course))
	}
	return models.Session{
		Course: entry.Course,
		Start:  start,
		End:    end,
		Link:   entry.Link,
	}, nil
}

// ParseWeekday resolves a weekday name, accepting both full and three-letter
// forms ("Monday", "Mon") in any case.
func ParseWeekday(name string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if key == full || key == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
