package notification

// MockNotifier records sent notices in memory for tests.
type MockNotifier struct {
	SentNotifications []NotificationData
	SentTypes         []NoticeType
}

func (m *MockNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	m.SentTypes = append(m.SentTypes, noticeType)
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}
