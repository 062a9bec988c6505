package ports

import (
	"context"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
)

// VisitInput carries the caller-supplied fields of a visit.
type VisitInput struct {
	Email                 string
	Status                string
	VisitType             string
	CustomerType          string
	DoctorName            string
	HospitalName          string
	OrganizationID        string
	CustomerID            string
	SalesPersonName       string
	ReportType            string
	ClientName            string
	ReportingManagerName  string
	Tags                  []string
	PincodeClient         int
	ClientEmail           string
	ClientPhone           string
	Client                string
	AddressClient         string
	NameOfPersonMet       string
	DesignationOfPerson   string
	QuestionsByClient     string
	NextSteps             string
	VisitOrCallHighlights string
	InDateTime            time.Time
	OutDateTime           time.Time
	InTime                string
	OutTime               string
	LatLng                string
}

// ListVisitsInput carries the parameters of the paginated visit listing.
type ListVisitsInput struct {
	Take   int
	Cursor string // bare visit id; "", "0" or "null" for the first page
	Search string // matched against client, hospital and doctor names
	From   time.Time
	To     time.Time
}

// VisitService defines use-case operations for visits.
type VisitService interface {
	Create(ctx context.Context, id *domain.Identity, in VisitInput) (*domain.Visit, error)
	Get(ctx context.Context, haplID string) (*domain.Visit, error)
	Update(ctx context.Context, haplID string, in VisitInput) (*domain.Visit, error)
	Delete(ctx context.Context, haplID string) (*domain.Visit, error)
	List(ctx context.Context, id *domain.Identity, in ListVisitsInput) (*pagination.Page[domain.Visit], error)
	ReportingManagers(ctx context.Context) ([]string, error)
}
