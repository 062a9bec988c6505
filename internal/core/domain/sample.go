package domain

import "time"

// Sample is a lab sample registered against a referring doctor. The reporting
// core only reads samples.
type Sample struct {
	ID                  string    `json:"id" bson:"_id,omitempty"`
	ReferringDoctorName string    `json:"referringDoctorName" bson:"ref_doctor_name"`
	OrganisationName    string    `json:"organisationName" bson:"organisation_name"`
	Product             string    `json:"product" bson:"product"`
	ProductID           string    `json:"productId" bson:"product_id"`
	SalesPersonID       string    `json:"salesPersonId" bson:"salesspoc_id"`
	SalesUserEmail      string    `json:"salesUserEmail" bson:"sales_user_email"`
	CustomerID          string    `json:"customerId" bson:"customer_id"`
	CustomerName        string    `json:"customerName" bson:"customer_name"`
	City                string    `json:"city" bson:"city"`
	RegistrationDate    time.Time `json:"registrationDate" bson:"registration_date"`
	CreatedAt           time.Time `json:"createdAt" bson:"created_at"`
}

// SiteOrders is the per-customer sample count of the site orders report.
type SiteOrders struct {
	Site       string `json:"Site"`
	Orders     int64  `json:"Orders"`
	CustomerID string `json:"CUSTOMER_ID"`
}
