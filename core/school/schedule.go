package school

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const (
	MaxDayOfWeek = 5
	MaxPeriod    = 10
)

type ScheduleSlot struct {
	ID          int    `json:"id"`
	ClassroomID int    `json:"classroom_id"`
	DayOfWeek   int    `json:"day_of_week"` // 1 (Monday) .. 5
	Period      int    `json:"period"`      // 1 .. 10
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	ClassLevel  string `json:"class_level"`
	Room        string `json:"room"`
	Color       string `json:"color,omitempty"` // from the subject catalog, on read only
}

// Key is the "day-period" form used by clients.
func (s ScheduleSlot) Key() string {
	return SlotKey(s.DayOfWeek, s.Period)
}

func SlotKey(day, period int) string {
	return fmt.Sprintf("%d-%d", day, period)
}

// ParseSlotKey parses a "day-period" key within the school week.
func ParseSlotKey(key string) (day, period int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("invalid slot key %q", key)
	}
	if day, err = strconv.Atoi(parts[0]); err != nil || day < 1 || day > MaxDayOfWeek {
		return 0, 0, errors.Errorf("invalid day in slot key %q", key)
	}
	if period, err = strconv.Atoi(parts[1]); err != nil || period < 1 || period > MaxPeriod {
		return 0, 0, errors.Errorf("invalid period in slot key %q", key)
	}
	return day, period, nil
}

type SlotEntry struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	ClassLevel  string `json:"class_level"`
	Room        string `json:"room"`
}

// IsEmpty reports whether the entry means "no slot".
func (e SlotEntry) IsEmpty() bool {
	return core.CleanString(e.SubjectCode) == "" && core.CleanString(e.SubjectName) == ""
}

// ScheduleSheet is a batch of slots for one classroom keyed by "day-period".
type ScheduleSheet struct {
	ClassroomID int                  `json:"classroom" validate:"required,min=1"`
	Slots       map[string]SlotEntry `json:"schedule"`
}

func (ss *ScheduleSheet) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ss); err != nil {
		return err
	}
	for key := range ss.Slots {
		if _, _, err := ParseSlotKey(key); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "schedule", Error: err.Error()})
		}
	}
	return nil
}
