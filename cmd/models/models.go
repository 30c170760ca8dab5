package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&MembershipPlan{},
		&SuperAdmin{},
		&Subscription{},
		&Client{},
		&Receipt{},
		&Device{},
		&NotificationHistory{},
	}
}
