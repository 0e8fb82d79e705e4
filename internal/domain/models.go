package domain

// All returns every model managed by migrations
func All() []any {
	return []any{
		&User{},
		&SellerDetails{},
		&Order{},
		&SellerResponse{},
		&Notification{},
		&PushToken{},
		&PushLog{},
	}
}
