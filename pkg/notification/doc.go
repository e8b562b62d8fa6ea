// Package notification delivers notices such as two-factor codes over
// pluggable channels.
//
// A NotificationManager holds one Notifier per delivery channel and a
// registry of notice templates keyed by notice type and channel. Send
// renders the registered template with the per-send data and hands the
// result to the channel's notifier.
//
// # Basic Usage
//
//	manager, err := notification.NewNotificationManagerWithOptions(
//		notification.WithSMTP(smtpConfig),
//		notification.WithDefaultTemplates(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = manager.Send(notification.TwoFactorCodeNotice, notification.EmailSystem, notification.NotificationData{
//		To:   "jos@example.com",
//		Data: map[string]string{"Code": "952744", "ExpiresInMinutes": "10"},
//	})
//
// Tests use MockNotifier, which records every sent notice instead of
// delivering it.
package notification
