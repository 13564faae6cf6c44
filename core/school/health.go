package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// HealthCheck is the daily hygiene check of a student.
type HealthCheck struct {
	ID           int    `json:"id"`
	StudentID    int    `json:"student_id"`
	ClassroomID  int    `json:"classroom_id"`
	Date         string `json:"date"`
	BrushedTeeth bool   `json:"brushed_teeth"`
	DrankMilk    bool   `json:"drank_milk"`
	Note         string `json:"note"`
}

// HealthCheckRow is a roster line of a classroom's health checks for one day.
// Recorded is false when the student has not been checked that day.
type HealthCheckRow struct {
	ID           int    `json:"id"`
	StudentID    string `json:"student_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BrushedTeeth bool   `json:"brushed_teeth"`
	DrankMilk    bool   `json:"drank_milk"`
	Note         string `json:"note"`
	Recorded     bool   `json:"recorded"`
}

// Measurement is a weight (kg) and height (cm) reading; BMI is derived on read.
type Measurement struct {
	ID          int     `json:"id"`
	StudentID   int     `json:"student_id"`
	ClassroomID int     `json:"classroom_id"`
	Date        string  `json:"date"`
	Weight      float64 `json:"weight"`
	Height      float64 `json:"height"`
}

type MeasurementRow struct {
	ID        int       `json:"id"`
	StudentID string    `json:"student_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Weight    float64   `json:"weight"`
	Height    float64   `json:"height"`
	Recorded  bool      `json:"recorded"`
	BMI       float64   `json:"bmi"`
	BMIStatus BMIStatus `json:"bmi_status"`
}

// MeasurementReading is a stored measurement with its derived BMI.
type MeasurementReading struct {
	Measurement
	BMI       float64   `json:"bmi"`
	BMIStatus BMIStatus `json:"bmi_status"`
}

// NewMeasurement contains information needed to record a student's weight and height.
type NewMeasurement struct {
	StudentID int     `json:"student_id" validate:"required,min=1"`
	Date      string  `json:"date" validate:"required,isodate"`
	Weight    float64 `json:"weight" validate:"min=0"`
	Height    float64 `json:"height" validate:"min=0"`
}

func (nm *NewMeasurement) Validate(validate *validator.Validate) error {
	nm.Date = core.CleanString(nm.Date)
	return validate.Struct(nm)
}
