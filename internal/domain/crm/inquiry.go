package crm

// Inquiry is a sales lead. It is persisted under the "clients" collection and
// serialized with the historic field names.
type Inquiry struct {
	ID             string         `json:"id"`
	CustomerID     string         `json:"customerId,omitempty"`
	Name           string         `json:"name"`
	Store          string         `json:"store"`
	Contact        string         `json:"contact"`
	InquiryType    InquiryType    `json:"inquiryType" validate:"required,oneof=散客线路 单团报价 单订项目 其他"`
	IntentionLevel IntentionLevel `json:"intentionLevel" validate:"required,oneof=高 中 低"`
	InquiryDate    string         `json:"inquiryDate" validate:"required"`
	InquiryDetails string         `json:"inquiryDetails"`
	Status         InquiryStatus  `json:"status" validate:"required,oneof=待跟进 跟进中 已成交 未成单 已失效"`
	Notes          string         `json:"notes"`
	FollowUpDate   *string        `json:"followUpDate"`
	CreatedAt      string         `json:"createdAt"`
	FollowUpCount  int            `json:"followUpCount" validate:"gte=0"`
}

// ApplyCustomer copies the denormalized customer fields
func (i *Inquiry) ApplyCustomer(c Customer) {
	i.CustomerID = c.ID
	i.Name = c.Name
	i.Store = c.Store
	i.Contact = c.Contact
}

// Normalize clears the follow-up date on terminal statuses
func (i *Inquiry) Normalize() {
	if i.Status.IsTerminal() {
		i.FollowUpDate = nil
	}
	if i.FollowUpDate != nil && *i.FollowUpDate == "" {
		i.FollowUpDate = nil
	}
}
