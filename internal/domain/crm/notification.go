package crm

// Notification is a message shown in the notification center. The text is
// resolved at display time from MessageKey and MessageParams.
type Notification struct {
	ID            string         `json:"id"`
	MessageKey    string         `json:"messageKey"`
	MessageParams map[string]any `json:"messageParams,omitempty"`
	Date          string         `json:"date"`
	Read          bool           `json:"read"`
	TargetType    TargetType     `json:"targetType,omitempty"`
	TargetID      string         `json:"targetId,omitempty"`
	IsStarred     bool           `json:"isStarred"`
	IsPinned      bool           `json:"isPinned"`
}

// Notification message keys
const (
	MsgNewClient    = "notif_new_client"
	MsgOrderUpdated = "notif_order_updated"
	MsgFollowUpDue  = "notif_follow_up_due"
)
