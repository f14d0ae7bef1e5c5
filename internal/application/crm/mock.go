package crm

import (
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
)

// Sizes of the generated dataset
const (
	MockInquiryCount      = 95
	MockNotificationCount = 3
)

var mockCustomerNames = []string{
	"Justin Lipshutz", "Marcus Culhane", "Leo Stanton", "Ana Krueger", "Phillip Stanton",
	"Jaydon Siphron", "Randy Press", "Terry Aminoff", "Sarah Chen", "Mike Ross",
	"Harvey Specter", "Louis Litt", "Donna Paulsen",
}

var mockStores = []string{"Marketing", "Finance", "R&D", "Sales", "Hunan Branch", "Shanghai Branch"}

// MockCustomerCount is the number of generated customers
var MockCustomerCount = len(mockCustomerNames)

// DefaultProfile is the profile placed in generated data when the user has
// no stored account.
func DefaultProfile(userID string) identity.User {
	return identity.User{
		ID:         userID,
		Name:       "Gavano",
		Role:       "Senior Agent",
		AvatarURL:  identity.AvatarFor("gavano"),
		Email:      "gavano@circlesoft.com",
		About:      "Experienced travel consultant specializing in European and Asian markets. Dedicated to providing personalized travel experiences.",
		Phone:      "(555) 123-4567",
		Department: "Sales Department A",
		JoinDate:   "2021-03-15",
		EmployeeID: "CS-8821",
		Location:   "Shanghai, China",
	}
}

// MockGenerator builds a plausible dataset for a user seeing the CRM for the
// first time. Indexed fields are derived from the user id; day-of-month
// picks and follow-up counts come from the faker.
type MockGenerator struct {
	faker *gofakeit.Faker
	now   func() time.Time
	loc   *time.Location
}

// NewMockGenerator creates a generator. A zero seed draws a random one.
func NewMockGenerator(seed int64, now func() time.Time, loc *time.Location) *MockGenerator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &MockGenerator{faker: gofakeit.New(uint64(seed)), now: now, loc: loc}
}

// UserSeed sums the UTF-16 code units of the user id
func UserSeed(userID string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(userID)) {
		sum += int(u)
	}
	return sum
}

// Generate returns the full mock aggregate
func (g *MockGenerator) Generate(userID string, user identity.User) *crm.Data {
	seed := UserSeed(userID)
	today := g.now().In(g.loc)

	customers := g.Customers(userID)
	clients, inquiryDays := g.inquiries(userID, seed, today, customers)
	history := g.history(clients, inquiryDays)
	orders := g.orders(userID, seed, today, clients, inquiryDays)

	data := &crm.Data{
		Customers:       customers,
		Clients:         clients,
		FollowUpHistory: history,
		FailureReasons:  map[string]crm.FailureReason{},
		Orders:          orders,
		User:            user,
		Notifications:   g.notifications(userID, seed, today, clients),
	}
	data.Normalize()
	return data
}

// Customers returns the generated customer list alone
func (g *MockGenerator) Customers(userID string) []crm.Customer {
	seed := UserSeed(userID)
	today := g.now().In(g.loc)
	out := make([]crm.Customer, len(mockCustomerNames))
	for i, name := range mockCustomerNames {
		created := time.Date(today.Year(), today.Month()-time.Month(i%4), g.day(), 0, 0, 0, 0, g.loc)
		out[i] = crm.Customer{
			ID:        fmt.Sprintf("%s_customer_%d", userID, i),
			Name:      name,
			Store:     mockStores[(i+seed)%len(mockStores)],
			Contact:   fmt.Sprintf("555-010%d", (i+seed)%100),
			Notes:     "VIP Customer",
			CreatedAt: shared.FormatTimestamp(created),
		}
	}
	return out
}

func (g *MockGenerator) day() int {
	return g.faker.IntRange(1, 28)
}

func monthOffset(i int) int {
	switch {
	case i < 18:
		return 0
	case i < 30:
		return 1
	case i < 45:
		return 2
	case i < 53:
		return 3
	default:
		return (i-53)/10 + 4
	}
}

func (g *MockGenerator) inquiries(userID string, seed int, today time.Time, customers []crm.Customer) ([]crm.Inquiry, []time.Time) {
	clients := make([]crm.Inquiry, MockInquiryCount)
	days := make([]time.Time, MockInquiryCount)
	for i := range clients {
		inquiryDay := time.Date(today.Year(), today.Month()-time.Month(monthOffset(i)), g.day(), 0, 0, 0, 0, g.loc)
		status := crm.InquiryStatuses[(i+seed)%len(crm.InquiryStatuses)]

		var followUpDate *string
		if status.IsOpen() {
			d := shared.FormatDate(today.AddDate(0, 0, g.faker.IntRange(0, 29)-5))
			followUpDate = &d
		}

		customer := customers[i%len(customers)]
		clients[i] = crm.Inquiry{
			ID:             fmt.Sprintf("%s_client_%d", userID, i+1),
			CustomerID:     customer.ID,
			Name:           customer.Name,
			Store:          customer.Store,
			Contact:        customer.Contact,
			InquiryType:    crm.InquiryTypes[(i+seed)%len(crm.InquiryTypes)],
			IntentionLevel: crm.IntentionLevels[(i+seed)%len(crm.IntentionLevels)],
			InquiryDate:    shared.FormatDate(inquiryDay),
			InquiryDetails: fmt.Sprintf("Inquiry %d regarding a custom package. Budget is flexible.", i+1),
			Status:         status,
			Notes:          "Follow up needed.",
			FollowUpDate:   followUpDate,
			CreatedAt:      shared.FormatTimestamp(inquiryDay),
			FollowUpCount:  g.faker.IntRange(0, 4),
		}
		days[i] = inquiryDay
	}
	return clients, days
}

func (g *MockGenerator) history(clients []crm.Inquiry, days []time.Time) []crm.FollowUpRecord {
	var out []crm.FollowUpRecord
	for i, client := range clients {
		for j := 0; j < client.FollowUpCount; j++ {
			last := j == client.FollowUpCount-1
			recordDate := days[i].AddDate(0, 0, j*7+2)

			status := crm.StatusInProgress
			var next *string
			if last {
				status = client.Status
			} else {
				d := shared.FormatDate(recordDate.AddDate(0, 0, 7))
				next = &d
			}
			out = append(out, crm.FollowUpRecord{
				ID:               fmt.Sprintf("fu_%s_%d", client.ID, j),
				ClientID:         client.ID,
				Date:             shared.FormatTimestamp(recordDate),
				Status:           status,
				NextFollowUpDate: next,
				Notes:            fmt.Sprintf("Follow up record %d. Discussed details.", j+1),
			})
		}
	}
	return out
}

func (g *MockGenerator) orders(userID string, seed int, today time.Time, clients []crm.Inquiry, days []time.Time) []crm.Order {
	var out []crm.Order
	i := 0
	for k, client := range clients {
		if client.Status != crm.StatusWon {
			continue
		}
		departure := days[k].AddDate(0, 0, 10)
		back := departure.AddDate(0, 0, 7)
		flag := func(mod int) bool { return (i+seed)%mod == 0 }

		o := crm.Order{
			ID:                       fmt.Sprintf("%s_order_%d", userID, i+1),
			OrderNumber:              fmt.Sprintf("ORD%d%04d", today.Year(), i+1+seed),
			ClientID:                 client.ID,
			ClientName:               client.Name,
			OrderType:                crm.OrderTypes[(i+seed)%len(crm.OrderTypes)],
			RouteName:                "Europe Classic 7 Days",
			ParticipantCount:         i%5 + 2,
			AdultCount:               intPtr(i%5 + 1),
			ChildCount:               intPtr(1),
			DepartureDate:            shared.FormatDate(departure),
			ReturnDate:               shared.FormatDate(back),
			DeparturePending:         flag(10),
			OrderStatus:              crm.OrderStatuses[(i+seed)%len(crm.OrderStatuses)],
			CustomerSource:           crm.CustomerSources[(i+seed)%len(crm.CustomerSources)],
			StoreSettlement:          floatPtr(float64((i+1)*1000 + 5000)),
			GroundSettlement:         floatPtr(float64((i+1)*800 + 4000)),
			CreatedAt:                client.CreatedAt,
			UpdatedAt:                client.CreatedAt,
			Guides:                   []crm.Guide{{Name: "John Doe", Phone: "123-456-7890", Prefix: "Main"}},
			Guests:                   []crm.Guest{{Name: client.Name, Phone: client.Contact, Role: crm.GuestRepresentative}},
			DepartureLocation:        "Beijing",
			ReturnLocation:           "Beijing",
			OutboundTransportType:    "Plane",
			OutboundTransportDetails: "CA123 08:00",
			ReturnTransportType:      "Plane",
			ReturnTransportDetails:   "CA456 18:00",
			TransportCost:            floatPtr(1500),
			Notes:                    "Window seat requested.",
			ConfirmationSent:         flag(2),
			GroupNoticeSent:          flag(3),
			RebateAmount:             floatPtr(50),
			GroundContact:            "Operator Contact",
			GroundOperator:           "Local Tours Inc.",
			InsurancePurchased:       flag(2),
			ContractSigned:           flag(2),
			PaymentMethod:            "Bank Transfer",
		}
		if i%5 == 4 {
			o.CancellationReason = "Customer cancelled"
		}
		out = append(out, o)
		i++
	}
	return out
}

func (g *MockGenerator) notifications(userID string, seed int, today time.Time, clients []crm.Inquiry) []crm.Notification {
	var randyID string
	for _, c := range clients {
		if c.Name == "Randy Press" {
			randyID = c.ID
			break
		}
	}
	return []crm.Notification{
		{
			ID:            userID + "_notif_1",
			MessageKey:    crm.MsgNewClient,
			MessageParams: map[string]any{"name": "Randy Press"},
			Date:          shared.FormatTimestamp(today),
			TargetType:    crm.TargetClient,
			TargetID:      randyID,
			IsPinned:      true,
			IsStarred:     true,
		},
		{
			ID:         userID + "_notif_2",
			MessageKey: crm.MsgOrderUpdated,
			MessageParams: map[string]any{
				"orderNumber": fmt.Sprintf("ORD2024%04d", 12+seed),
				"status":      "status_completed_trip",
			},
			Date:       shared.FormatTimestamp(today.Add(-time.Hour)),
			TargetType: crm.TargetOrder,
			TargetID:   userID + "_order_12",
		},
		{
			ID:            userID + "_notif_3",
			MessageKey:    crm.MsgFollowUpDue,
			MessageParams: map[string]any{"count": 3},
			Date:          shared.FormatTimestamp(today.Add(-2 * time.Hour)),
			Read:          true,
			IsStarred:     true,
		},
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
