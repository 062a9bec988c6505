package domain

import (
	"regexp"
	"time"
)

const (
	StatusCompleted = "COMPLETED"
	StatusAdHoc     = "AD_HOC"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"

	// VisitTypeNewVisit increments the same-day visit counter.
	VisitTypeNewVisit = "New Visit"

	HaplIDPrefix = "HAPL-"
)

// ReportableStatuses are the statuses the hospital and doctor reports count.
var ReportableStatuses = []string{StatusCompleted, StatusAdHoc}

var haplIDPattern = regexp.MustCompile(`^HAPL-\d+$`)

// ValidHaplID reports whether id has the business-key format HAPL-<timestamp>.
func ValidHaplID(id string) bool {
	return haplIDPattern.MatchString(id)
}

// Visit is a doctor or hospital sales visit captured by a salesperson.
type Visit struct {
	ID                    string    `json:"id" bson:"_id,omitempty"`
	HaplID                string    `json:"haplId" bson:"hapl_id"`
	UserID                string    `json:"userId" bson:"user_id"`
	UserEmail             string    `json:"userEmail" bson:"user_email"`
	ManagerEmail          string    `json:"managerEmail" bson:"manager_email"`
	ManagerID             string    `json:"managerId" bson:"manager_id"`
	Email                 string    `json:"email" bson:"email"`
	Status                string    `json:"status" bson:"status,omitempty"`
	VisitType             string    `json:"visitType" bson:"visit_type"`
	CustomerType          string    `json:"customerType" bson:"customer_type"`
	DoctorName            string    `json:"doctorName" bson:"doctor_name"`
	HospitalName          string    `json:"hospitalName" bson:"hospital_name"`
	OrganizationID        string    `json:"organizationId,omitempty" bson:"organization_id,omitempty"`
	CustomerID            string    `json:"customerId,omitempty" bson:"customer_id,omitempty"`
	SalesPersonName       string    `json:"salesPersonName" bson:"sales_person_name"`
	ReportType            string    `json:"reportType" bson:"report_type"`
	ClientName            string    `json:"clientName" bson:"client_name"`
	TodayVisitCount       int       `json:"todayVisitCount" bson:"today_visit_count"`
	ReportingManagerName  string    `json:"reportingManagerName" bson:"reporting_manager_name"`
	Tags                  []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	PincodeClient         int       `json:"pincodeClient" bson:"pincode_client"`
	ClientEmail           string    `json:"clientEmail" bson:"client_email"`
	ClientPhone           string    `json:"clientPhone" bson:"client_phone"`
	Client                string    `json:"client" bson:"client"`
	AddressClient         string    `json:"addressClient" bson:"address_client"`
	NameOfPersonMet       string    `json:"nameOfPersonMet" bson:"name_of_person_met"`
	DesignationOfPerson   string    `json:"designationOfPerson" bson:"designation_of_person"`
	QuestionsByClient     string    `json:"questionsByClient" bson:"questions_by_client"`
	NextSteps             string    `json:"nextSteps" bson:"next_steps"`
	VisitOrCallHighlights string    `json:"visitOrCallHighlights" bson:"visit_or_call_highlights"`
	InDateTime            time.Time `json:"inDateTime" bson:"in_datetime"`
	OutDateTime           time.Time `json:"outDateTime" bson:"out_datetime"`
	PlannedInDateTime     time.Time `json:"plannedInDateTime" bson:"planned_in_datetime"`
	PlannedOutDateTime    time.Time `json:"plannedOutDateTime" bson:"planned_out_datetime"`
	InDate                time.Time `json:"inDate" bson:"in_date"`
	OutDate               time.Time `json:"outDate" bson:"out_date"`
	InTime                string    `json:"inTime" bson:"in_time"`
	OutTime               string    `json:"outTime" bson:"out_time"`
	LatLng                string    `json:"latLng" bson:"latlng"`
	Geolocation           string    `json:"geolocation" bson:"geolocation"`
	CapturedDate          time.Time `json:"capturedDate" bson:"captured_date"`
	CreatedAt             time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt" bson:"updated_at"`
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodayVisitCount returns the same-day counter for a visit of visitType given
// the number of visits already captured today.
func TodayVisitCount(visitType string, existingToday int64) int {
	if visitType == VisitTypeNewVisit {
		return int(existingToday) + 1
	}
	return 1
}
