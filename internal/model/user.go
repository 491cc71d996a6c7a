package model

// User is a bot user identified by their Telegram account id. Telegram
// assigns the id, so it serves as the primary key directly and there is
// at most one row per account.
type User struct {
	TelegramID int64 `gorm:"column:telegram_id;primaryKey"`
}

func (User) TableName() string { return "users" }
