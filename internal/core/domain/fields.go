package domain

// Stored field names used when building query predicates. They match the bson
// tags on the entity structs.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"

	FieldVisitHaplID        = "hapl_id"
	FieldVisitEmail         = "email"
	FieldVisitStatus        = "status"
	FieldVisitDoctorName    = "doctor_name"
	FieldVisitHospitalName  = "hospital_name"
	FieldVisitClientName    = "client_name"
	FieldVisitCapturedDate  = "captured_date"
	FieldVisitReportingMgr  = "reporting_manager_name"
	FieldSampleDoctorName   = "ref_doctor_name"
	FieldSampleSalesPerson  = "salesspoc_id"
	FieldSampleProductID    = "product_id"
	FieldSampleCity         = "city"
	FieldSampleRegisteredAt = "registration_date"
	FieldOrderID            = "order_id"
	FieldOrderProductName   = "product_name"
	FieldOrderStatus        = "current_status"
	FieldOrderCustomerFirst = "customer.first_name"
	FieldOrderCustomerLast  = "customer.last_name"

	FieldUserEmail        = "email"
	FieldUserManagerEmail = "manager_email"
)
