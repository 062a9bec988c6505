package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// nameField accepts either "name" or {"name": "name"}.
type nameField string

func (n *nameField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*n = nameField(obj.Name)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected a string or an object with a name: %w", err)
	}
	*n = nameField(s)
	return nil
}

// looseInt accepts a JSON number or a numeric string. Blank strings are zero.
type looseInt int

func (i *looseInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*i = 0
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expected an integer: %w", err)
	}
	*i = looseInt(n)
	return nil
}

// visitRequest is the create/update body. Keys match the stored upper-case
// field names existing clients send.
type visitRequest struct {
	Email                 string    `json:"EMAIL" validate:"required,email"`
	Status                string    `json:"STATUS"`
	VisitType             string    `json:"VISIT_TYPE" validate:"required"`
	CustomerType          string    `json:"CUSTOMER_TYPE"`
	DoctorName            nameField `json:"DOCTOR_NAME"`
	HospitalName          nameField `json:"HOSPITAL_NAME"`
	OrganizationID        string    `json:"ORGANIZATION_ID"`
	CustomerID            string    `json:"CUSTOMER_ID"`
	SalesPersonName       string    `json:"YOUR_NAME"`
	ReportType            string    `json:"REPORT_TYPE"`
	ClientName            string    `json:"CLIENT_NAME"`
	ReportingManagerName  string    `json:"REPORTING_MANAGER_NAME"`
	Tags                  []string  `json:"TAGS"`
	PincodeClient         looseInt  `json:"PINCODE_CLIENT"`
	ClientEmail           string    `json:"CLIENT_EMAIL"`
	ClientPhone           string    `json:"CLIENT_PHONE"`
	Client                string    `json:"CLIENT"`
	AddressClient         string    `json:"ADDRESS_CLIENT"`
	NameOfPersonMet       string    `json:"NAME_OF_PERSON_MET"`
	DesignationOfPerson   string    `json:"DESIGNATION_OF_PERSON"`
	QuestionsByClient     string    `json:"QUESTIONS_BY_CLIENT"`
	NextSteps             string    `json:"NEXT_STEPS"`
	VisitOrCallHighlights string    `json:"VISIT_OR_CALL_HIGHLIGHTS"`
	InDateTime            string    `json:"IN_DATETIME" validate:"required"`
	OutDateTime           string    `json:"OUT_DATETIME" validate:"required"`
	InTime                string    `json:"IN_TIME"`
	OutTime               string    `json:"OUT_TIME"`
	LatLng                string    `json:"LATLNG"`
}

// listMeta is the metadata block of paginated listings.
type listMeta struct {
	TotalCount  int64   `json:"totalCount"`
	LastCursor  *string `json:"lastCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

type pageResponse[T any] struct {
	Data     []T      `json:"data"`
	MetaData listMeta `json:"metaData"`
}
