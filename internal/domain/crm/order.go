package crm

// Guide is a tour guide assigned to an order
type Guide struct {
	Prefix string `json:"prefix,omitempty"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

// Guest is a traveller on an order
type Guest struct {
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Role  GuestRole `json:"role,omitempty"`
}

// Order is a booked trip created from a won inquiry
type Order struct {
	ID                       string              `json:"id"`
	OrderNumber              string              `json:"orderNumber"`
	ClientID                 string              `json:"clientId" validate:"required"`
	ClientName               string              `json:"clientName,omitempty"`
	OrderType                OrderType           `json:"orderType" validate:"required,oneof=单团定制 散客出行 单订项目"`
	RouteName                string              `json:"routeName"`
	ParticipantCount         int                 `json:"participantCount" validate:"gte=0"`
	AdultCount               *int                `json:"adultCount,omitempty"`
	ChildCount               *int                `json:"childCount,omitempty"`
	DepartureDate            string              `json:"departureDate"`
	ReturnDate               string              `json:"returnDate,omitempty"`
	DeparturePending         bool                `json:"departurePending"`
	OrderStatus              OrderStatus         `json:"orderStatus" validate:"required,oneof=待出行 行程中 已完成 已清账 已取消"`
	CustomerSource           CustomerSource      `json:"customerSource" validate:"required,oneof=同行 直客"`
	PlatformSystem           string              `json:"platformSystem,omitempty"`
	NoSystemUpload           bool                `json:"noSystemUpload,omitempty"`
	PaymentMethod            string              `json:"paymentMethod,omitempty"`
	ContractSigned           bool                `json:"contractSigned,omitempty"`
	InsurancePurchased       bool                `json:"insurancePurchased,omitempty"`
	GroundOperator           string              `json:"groundOperator,omitempty"`
	GroundContact            string              `json:"groundContact,omitempty"`
	GroundRoute              string              `json:"groundRoute,omitempty"`
	ConfirmationSent         bool                `json:"confirmationSent,omitempty"`
	RebateAmount             *float64            `json:"rebateAmount,omitempty"`
	StoreSettlement          *float64            `json:"storeSettlement,omitempty"`
	GroundSettlement         *float64            `json:"groundSettlement,omitempty"`
	CancellationReason       string              `json:"cancellationReason,omitempty"`
	Notes                    string              `json:"notes,omitempty"`
	CreatedAt                string              `json:"createdAt"`
	UpdatedAt                string              `json:"updatedAt"`
	Guides                   []Guide             `json:"guides,omitempty"`
	Guests                   []Guest             `json:"guests,omitempty"`
	GroupNoticeSent          bool                `json:"groupNoticeSent,omitempty"`
	DepartureLocation        string              `json:"departureLocation,omitempty"`
	ReturnLocation           string              `json:"returnLocation,omitempty"`
	OutboundTransportType    string              `json:"outboundTransportType,omitempty"`
	OutboundTransportDetails string              `json:"outboundTransportDetails,omitempty"`
	ReturnTransportType      string              `json:"returnTransportType,omitempty"`
	ReturnTransportDetails   string              `json:"returnTransportDetails,omitempty"`
	TransportCost            *float64            `json:"transportCost,omitempty"`
	TransportCostStatus      TransportCostStatus `json:"transportCostStatus,omitempty"`
}
