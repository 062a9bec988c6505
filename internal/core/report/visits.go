package report

import (
	"sort"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// Visitor is a salesperson who visited a hospital or doctor. The first visit
// seen for an email wins, so with newest-first input it describes the latest.
type Visitor struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	LastVisitType       string `json:"lastVisitType"`
	LastVisitStatus     string `json:"lastVisitStatus"`
	LastHospitalVisited string `json:"lastHospitalVisited,omitempty"`
}

type visitors struct {
	list []Visitor
	seen map[string]struct{}
}

func (vs *visitors) add(v domain.Visit, withHospital bool) {
	email := ownerEmail(v)
	if vs.seen == nil {
		vs.seen = make(map[string]struct{})
	}
	if _, ok := vs.seen[email]; ok {
		return
	}
	vs.seen[email] = struct{}{}
	visitor := Visitor{
		Name:            v.SalesPersonName,
		Email:           email,
		LastVisitType:   v.VisitType,
		LastVisitStatus: v.Status,
	}
	if withHospital {
		visitor.LastHospitalVisited = v.HospitalName
	}
	vs.list = append(vs.list, visitor)
}

func ownerEmail(v domain.Visit) string {
	if v.UserEmail != "" {
		return v.UserEmail
	}
	return v.Email
}

func createdAt(v domain.Visit) time.Time { return v.CreatedAt }

// HospitalSummary is one row of the visited-hospitals report.
type HospitalSummary struct {
	HospitalName string    `json:"hospitalName"`
	VisitedBy    []Visitor `json:"visitedBy"`
	Timeline
	visitors visitors
}

// Hospitals groups visits by hospital name, sorted by name.
func Hospitals(visits []domain.Visit) []*HospitalSummary {
	out := Summarize(visits, Spec[domain.Visit, string, HospitalSummary]{
		Key:      func(v domain.Visit) string { return v.HospitalName },
		New:      func(v domain.Visit) *HospitalSummary { return &HospitalSummary{HospitalName: v.HospitalName} },
		When:     createdAt,
		Timeline: func(h *HospitalSummary) *Timeline { return &h.Timeline },
		Add:      func(h *HospitalSummary, v domain.Visit) { h.visitors.add(v, false) },
	})
	for _, h := range out {
		h.VisitedBy = h.visitors.list
		h.sortDesc()
	}
	sort.SliceStable(out, func(i, j int) bool { return nameLess(out[i].HospitalName, out[j].HospitalName) })
	return out
}

// DoctorSummary is one row of the visited-doctors report.
type DoctorSummary struct {
	DoctorName          string    `json:"doctorName"`
	AssociatedHospitals []string  `json:"associatedHospitals"`
	TotalHospitals      int       `json:"totalHospitals"`
	VisitedBy           []Visitor `json:"visitedBy"`
	Timeline
	visitors  visitors
	hospitals orderedSet
}

// Doctors groups visits by doctor name, sorted by name.
func Doctors(visits []domain.Visit) []*DoctorSummary {
	out := Summarize(visits, Spec[domain.Visit, string, DoctorSummary]{
		Key:      func(v domain.Visit) string { return v.DoctorName },
		New:      func(v domain.Visit) *DoctorSummary { return &DoctorSummary{DoctorName: v.DoctorName} },
		When:     createdAt,
		Timeline: func(d *DoctorSummary) *Timeline { return &d.Timeline },
		Add: func(d *DoctorSummary, v domain.Visit) {
			if v.HospitalName != "" {
				d.hospitals.add(v.HospitalName)
			}
			d.visitors.add(v, true)
		},
	})
	for _, d := range out {
		d.AssociatedHospitals = d.hospitals.sorted()
		d.TotalHospitals = len(d.AssociatedHospitals)
		d.VisitedBy = d.visitors.list
		d.sortDesc()
	}
	sort.SliceStable(out, func(i, j int) bool { return nameLess(out[i].DoctorName, out[j].DoctorName) })
	return out
}

// LatestVisit tracks the newest and oldest visit of one salesperson's group.
type LatestVisit struct {
	ID               string      `json:"id"`
	HaplID           string      `json:"haplId"`
	HospitalName     string      `json:"hospitalName"`
	SalesPersonName  string      `json:"salesPersonName"`
	SalesPersonEmail string      `json:"salesPersonEmail"`
	VisitStatus      string      `json:"visitStatus"`
	TotalVisits      int         `json:"totalVisits"`
	VisitDate        time.Time   `json:"visitDate"`
	FirstVisitDate   time.Time   `json:"firstVisitDate"`
	AllVisitDates    []time.Time `json:"allVisitDates"`
}

func newLatestVisit(v domain.Visit) LatestVisit {
	return LatestVisit{
		ID:               v.ID,
		HaplID:           v.HaplID,
		HospitalName:     v.HospitalName,
		SalesPersonName:  v.SalesPersonName,
		SalesPersonEmail: v.Email,
		VisitStatus:      v.Status,
		VisitDate:        v.CreatedAt,
		FirstVisitDate:   v.CreatedAt,
	}
}

func (l *LatestVisit) add(v domain.Visit) {
	l.TotalVisits++
	l.AllVisitDates = append(l.AllVisitDates, v.CreatedAt)
	if v.CreatedAt.After(l.VisitDate) {
		l.VisitDate = v.CreatedAt
		l.VisitStatus = v.Status
	}
	if v.CreatedAt.Before(l.FirstVisitDate) {
		l.FirstVisitDate = v.CreatedAt
	}
}

func (l *LatestVisit) finish() {
	sort.SliceStable(l.AllVisitDates, func(i, j int) bool {
		return l.AllVisitDates[i].After(l.AllVisitDates[j])
	})
}

// SalesHospitals groups one salesperson's visits by hospital.
func SalesHospitals(visits []domain.Visit) []*LatestVisit {
	out := Summarize(visits, Spec[domain.Visit, string, LatestVisit]{
		Key: func(v domain.Visit) string { return v.HospitalName },
		New: func(v domain.Visit) *LatestVisit {
			l := newLatestVisit(v)
			return &l
		},
		Add: (*LatestVisit).add,
	})
	for _, l := range out {
		l.finish()
	}
	return out
}

// DoctorVisit is a LatestVisit for a (doctor, hospital) pair.
type DoctorVisit struct {
	DoctorName string `json:"doctorName"`
	LatestVisit
}

type doctorAtHospital struct {
	doctor   string
	hospital string
}

// SalesDoctors groups one salesperson's visits by (doctor, hospital).
func SalesDoctors(visits []domain.Visit) []*DoctorVisit {
	out := Summarize(visits, Spec[domain.Visit, doctorAtHospital, DoctorVisit]{
		Key: func(v domain.Visit) doctorAtHospital {
			return doctorAtHospital{doctor: v.DoctorName, hospital: v.HospitalName}
		},
		New: func(v domain.Visit) *DoctorVisit {
			return &DoctorVisit{DoctorName: v.DoctorName, LatestVisit: newLatestVisit(v)}
		},
		Add: func(d *DoctorVisit, v domain.Visit) { d.add(v) },
	})
	for _, d := range out {
		d.finish()
	}
	return out
}

// VisitRow is one visit of the per-salesperson visit listing.
type VisitRow struct {
	ID               string    `json:"id"`
	HaplID           string    `json:"haplId"`
	SalesPersonName  string    `json:"salesPersonName"`
	SalesPersonEmail string    `json:"salesPersonEmail"`
	VisitType        string    `json:"visitType"`
	VisitStatus      string    `json:"visitStatus"`
	DoctorName       string    `json:"doctorName"`
	HospitalName     string    `json:"hospitalName"`
	ClientName       string    `json:"clientName"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SalesVisits lists visits and tallies them by status.
func SalesVisits(visits []domain.Visit) ([]VisitRow, StatusTally) {
	rows := make([]VisitRow, 0, len(visits))
	var tally StatusTally
	for _, v := range visits {
		rows = append(rows, VisitRow{
			ID:               v.ID,
			HaplID:           v.HaplID,
			SalesPersonName:  v.SalesPersonName,
			SalesPersonEmail: v.Email,
			VisitType:        v.VisitType,
			VisitStatus:      v.Status,
			DoctorName:       v.DoctorName,
			HospitalName:     v.HospitalName,
			ClientName:       v.ClientName,
			CreatedAt:        v.CreatedAt,
		})
		tally.Add(v.Status)
	}
	return rows, tally
}
