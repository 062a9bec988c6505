package report

import (
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// DoctorMonth is the sample count of one referring doctor in one month.
type DoctorMonth struct {
	DoctorName   string   `json:"doctorName"`
	HospitalName string   `json:"hospitalName"`
	Month        int      `json:"month"`
	Year         int      `json:"year"`
	TotalSamples int      `json:"totalSamples"`
	Products     []string `json:"products"`
	products     orderedSet
}

type doctorMonthKey struct {
	doctor string
	year   int
	month  time.Month
}

// DoctorMonths groups samples by (doctor, year-month) in UTC.
func DoctorMonths(samples []domain.Sample) []*DoctorMonth {
	out := Summarize(samples, Spec[domain.Sample, doctorMonthKey, DoctorMonth]{
		Key: func(s domain.Sample) doctorMonthKey {
			at := s.CreatedAt.UTC()
			return doctorMonthKey{doctor: s.ReferringDoctorName, year: at.Year(), month: at.Month()}
		},
		New: func(s domain.Sample) *DoctorMonth {
			at := s.CreatedAt.UTC()
			return &DoctorMonth{
				DoctorName:   s.ReferringDoctorName,
				HospitalName: s.OrganisationName,
				Month:        int(at.Month()),
				Year:         at.Year(),
			}
		},
		Add: func(d *DoctorMonth, s domain.Sample) {
			d.TotalSamples++
			d.products.add(s.Product)
		},
	})
	for _, d := range out {
		d.Products = d.products.values()
	}
	return out
}

// DatedStatus is one visit of a doctor activity row.
type DatedStatus struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// DatedProduct is one sample of a doctor activity row.
type DatedProduct struct {
	Product string    `json:"product"`
	Date    time.Time `json:"date"`
}

// DoctorActivity merges a doctor's visits with the samples they referred.
type DoctorActivity struct {
	DoctorName   string         `json:"doctorName"`
	HospitalName string         `json:"hospitalName"`
	Salesperson  string         `json:"salesperson"`
	Visits       []DatedStatus  `json:"visits"`
	TotalVisits  int            `json:"totalVisits"`
	TotalSamples int            `json:"totalSamples"`
	Samples      []DatedProduct `json:"samples"`
}

// DoctorNames returns the distinct doctor names of visits in first-seen order.
func DoctorNames(visits []domain.Visit) []string {
	var set orderedSet
	for _, v := range visits {
		set.add(v.DoctorName)
	}
	return set.values()
}

// DoctorActivities groups visits by doctor and attaches every sample whose
// referring doctor was visited. Samples of unvisited doctors are ignored.
func DoctorActivities(visits []domain.Visit, samples []domain.Sample) []*DoctorActivity {
	out := Summarize(visits, Spec[domain.Visit, string, DoctorActivity]{
		Key: func(v domain.Visit) string { return v.DoctorName },
		New: func(v domain.Visit) *DoctorActivity {
			return &DoctorActivity{
				DoctorName:   v.DoctorName,
				HospitalName: v.HospitalName,
				Salesperson:  v.SalesPersonName,
				Visits:       []DatedStatus{},
				Samples:      []DatedProduct{},
			}
		},
		Add: func(d *DoctorActivity, v domain.Visit) {
			d.Visits = append(d.Visits, DatedStatus{Date: v.CreatedAt, Status: v.Status})
			d.TotalVisits++
		},
	})

	byDoctor := make(map[string]*DoctorActivity, len(out))
	for _, d := range out {
		byDoctor[d.DoctorName] = d
	}
	for _, s := range samples {
		d, ok := byDoctor[s.ReferringDoctorName]
		if !ok {
			continue
		}
		d.Samples = append(d.Samples, DatedProduct{Product: s.Product, Date: s.CreatedAt})
		d.TotalSamples++
	}
	return out
}
