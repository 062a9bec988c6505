package handler

import (
	"strings"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/report"
)

// --- Request → Service input ---

func toVisitInput(req visitRequest) (ports.VisitInput, error) {
	in, ok := report.ParseDate(req.InDateTime)
	if !ok {
		return ports.VisitInput{}, domain.Invalid("Invalid IN_DATETIME")
	}
	out, ok := report.ParseDate(req.OutDateTime)
	if !ok {
		return ports.VisitInput{}, domain.Invalid("Invalid OUT_DATETIME")
	}

	return ports.VisitInput{
		Email:                 strings.TrimSpace(req.Email),
		Status:                req.Status,
		VisitType:             req.VisitType,
		CustomerType:          req.CustomerType,
		DoctorName:            string(req.DoctorName),
		HospitalName:          string(req.HospitalName),
		OrganizationID:        req.OrganizationID,
		CustomerID:            req.CustomerID,
		SalesPersonName:       req.SalesPersonName,
		ReportType:            req.ReportType,
		ClientName:            req.ClientName,
		ReportingManagerName:  req.ReportingManagerName,
		Tags:                  req.Tags,
		PincodeClient:         int(req.PincodeClient),
		ClientEmail:           req.ClientEmail,
		ClientPhone:           req.ClientPhone,
		Client:                req.Client,
		AddressClient:         req.AddressClient,
		NameOfPersonMet:       req.NameOfPersonMet,
		DesignationOfPerson:   req.DesignationOfPerson,
		QuestionsByClient:     req.QuestionsByClient,
		NextSteps:             req.NextSteps,
		VisitOrCallHighlights: req.VisitOrCallHighlights,
		InDateTime:            in,
		OutDateTime:           out,
		InTime:                req.InTime,
		OutTime:               req.OutTime,
		LatLng:                req.LatLng,
	}, nil
}

// --- Service output → Response ---

func toPageResponse[T any](p *pagination.Page[T]) pageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	meta := listMeta{TotalCount: p.TotalCount, HasNextPage: p.HasNextPage}
	if p.LastCursor != "" {
		cursor := p.LastCursor
		meta.LastCursor = &cursor
	}
	return pageResponse[T]{Data: items, MetaData: meta}
}
