package crm

// InquiryType classifies what an inquiry asks for
type InquiryType string

const (
	InquiryTypeScheduledTour InquiryType = "散客线路"
	InquiryTypeGroupQuote    InquiryType = "单团报价"
	InquiryTypeSingleBooking InquiryType = "单订项目"
	InquiryTypeOther         InquiryType = "其他"
)

// InquiryTypes lists every inquiry type in display order
var InquiryTypes = []InquiryType{InquiryTypeScheduledTour, InquiryTypeGroupQuote, InquiryTypeSingleBooking, InquiryTypeOther}

// IntentionLevel is how likely an inquiry is to convert
type IntentionLevel string

const (
	IntentionHigh   IntentionLevel = "高"
	IntentionMedium IntentionLevel = "中"
	IntentionLow    IntentionLevel = "低"
)

// IntentionLevels lists every intention level from high to low
var IntentionLevels = []IntentionLevel{IntentionHigh, IntentionMedium, IntentionLow}

// InquiryStatus is the pipeline state of an inquiry
type InquiryStatus string

const (
	StatusPending    InquiryStatus = "待跟进"
	StatusInProgress InquiryStatus = "跟进中"
	StatusWon        InquiryStatus = "已成交"
	StatusLost       InquiryStatus = "未成单"
	StatusExpired    InquiryStatus = "已失效"
)

// InquiryStatuses lists every status in pipeline order
var InquiryStatuses = []InquiryStatus{StatusPending, StatusInProgress, StatusWon, StatusLost, StatusExpired}

// IsOpen reports whether the inquiry still needs follow-up
func (s InquiryStatus) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsTerminal reports whether the status closes the inquiry. A terminal
// status never carries a next follow-up date.
func (s InquiryStatus) IsTerminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusExpired
}

// FailureReasonCode explains why an inquiry was lost
type FailureReasonCode string

const (
	FailurePrice         FailureReasonCode = "价格原因"
	FailureProductFit    FailureReasonCode = "产品不符"
	FailureCompetitor    FailureReasonCode = "竞争对手"
	FailurePlanChanged   FailureReasonCode = "客户计划变更"
	FailureBudget        FailureReasonCode = "客户预算不足"
	FailureCommunication FailureReasonCode = "沟通不畅"
	FailureOther         FailureReasonCode = "其他"
)

// FailureReasonCodes lists every failure reason
var FailureReasonCodes = []FailureReasonCode{
	FailurePrice, FailureProductFit, FailureCompetitor, FailurePlanChanged,
	FailureBudget, FailureCommunication, FailureOther,
}

// OrderType classifies an order
type OrderType string

const (
	OrderTypeCustomGroup   OrderType = "单团定制"
	OrderTypeScheduledTour OrderType = "散客出行"
	OrderTypeSingleBooking OrderType = "单订项目"
)

// OrderTypes lists every order type
var OrderTypes = []OrderType{OrderTypeCustomGroup, OrderTypeScheduledTour, OrderTypeSingleBooking}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPendingDeparture OrderStatus = "待出行"
	OrderInProgress       OrderStatus = "行程中"
	OrderCompleted        OrderStatus = "已完成"
	OrderSettled          OrderStatus = "已清账"
	OrderCancelled        OrderStatus = "已取消"
)

// OrderStatuses lists every order status
var OrderStatuses = []OrderStatus{OrderPendingDeparture, OrderInProgress, OrderCompleted, OrderSettled, OrderCancelled}

// IsActive reports whether the trip has not finished yet
func (s OrderStatus) IsActive() bool {
	return s == OrderPendingDeparture || s == OrderInProgress
}

// CustomerSource is where an order came from
type CustomerSource string

const (
	SourcePeer   CustomerSource = "同行"
	SourceDirect CustomerSource = "直客"
)

// CustomerSources lists every customer source
var CustomerSources = []CustomerSource{SourcePeer, SourceDirect}

// GuestRole is a traveller's role in a group
type GuestRole string

const (
	GuestRepresentative GuestRole = "游客代表"
	GuestTourLeader     GuestRole = "领队"
	GuestEscort         GuestRole = "全陪"
)

// TransportCostStatus marks who pays transport
type TransportCostStatus string

// TransportSelfPaid means the guest arranges their own transport
const TransportSelfPaid TransportCostStatus = "客人自理"

// TargetType is the kind of entity a notification points at
type TargetType string

const (
	TargetClient TargetType = "client"
	TargetOrder  TargetType = "order"
)

// CustomerDeletePolicy decides what happens to inquiries of a deleted customer
type CustomerDeletePolicy string

const (
	// DeleteKeep leaves linked inquiries untouched with a dangling customerId
	DeleteKeep CustomerDeletePolicy = "keep"
	// DeleteUnlink clears customerId on linked inquiries
	DeleteUnlink CustomerDeletePolicy = "unlink"
	// DeleteCascade removes linked inquiries together with their follow-ups and orders
	DeleteCascade CustomerDeletePolicy = "cascade"
)

// ParseCustomerDeletePolicy maps config values to a policy, defaulting to keep
func ParseCustomerDeletePolicy(s string) CustomerDeletePolicy {
	switch CustomerDeletePolicy(s) {
	case DeleteUnlink, DeleteCascade:
		return CustomerDeletePolicy(s)
	default:
		return DeleteKeep
	}
}
