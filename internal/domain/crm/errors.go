package crm

import "github.com/circlesoft/crm/internal/domain/shared"

var (
	ErrCustomerExists        = shared.NewDomainError("CUSTOMER_EXISTS", "A customer with this name and store already exists")
	ErrFailureDetailRequired = shared.NewDomainError("FAILURE_DETAIL_REQUIRED", "A failure reason detail is required when an inquiry is lost")
	ErrReferenceNotFound     = shared.NewDomainError("REFERENCE_NOT_FOUND", "Referenced record does not exist")
	ErrCorruptData           = shared.NewDomainError("CORRUPT_DATA", "Stored CRM data could not be parsed")

	ErrCustomerNotFound     = shared.NewDomainError("NOT_FOUND", "Customer not found")
	ErrInquiryNotFound      = shared.NewDomainError("NOT_FOUND", "Inquiry not found")
	ErrOrderNotFound        = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrFollowUpNotFound     = shared.NewDomainError("NOT_FOUND", "Follow-up record not found")
	ErrNotificationNotFound = shared.NewDomainError("NOT_FOUND", "Notification not found")
)
