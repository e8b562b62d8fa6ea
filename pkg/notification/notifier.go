package notification

// NotificationSystem represents a delivery channel (e.g. email)
type NotificationSystem string

// NoticeType represents a kind of notice (e.g. a two-factor code)
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
)

const (
	TwoFactorCodeNotice NoticeType = "two_factor_code"
)

// NotificationData carries the per-send values of a notice
type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: overrides the template subject
	Body    string            // Optional: pre-rendered content
	Data    map[string]string // Values substituted into the registered template
}

// NoticeTemplate defines how a notice is rendered
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier sends a rendered notice over one delivery channel
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
