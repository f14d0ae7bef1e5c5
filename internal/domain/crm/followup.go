package crm

// FollowUpRecord is one entry of an inquiry's contact history
type FollowUpRecord struct {
	ID                  string            `json:"id"`
	ClientID            string            `json:"clientId" validate:"required"`
	Date                string            `json:"date"`
	Status              InquiryStatus     `json:"status" validate:"required,oneof=待跟进 跟进中 已成交 未成单 已失效"`
	NextFollowUpDate    *string           `json:"nextFollowUpDate"`
	Notes               string            `json:"notes"`
	FailureReason       FailureReasonCode `json:"failureReason,omitempty"`
	FailureReasonDetail string            `json:"failureReasonDetail,omitempty"`
}

// FailureReason is the recorded cause of a lost inquiry, keyed by inquiry id
type FailureReason struct {
	Reason string `json:"reason"`
	Detail string `json:"detail"`
	Date   string `json:"date"`
}

// FailureDetails accompanies a follow-up that marks an inquiry lost
type FailureDetails struct {
	Reason FailureReasonCode `json:"reason" validate:"required,oneof=价格原因 产品不符 竞争对手 客户计划变更 客户预算不足 沟通不畅 其他"`
	Detail string            `json:"detail"`
}
