package user

import "time"

// User is a shop customer identified by the chat account that talks to the bot.
// ChatID never changes once assigned; profile fields are editable.
type User struct {
	ID        int64     `json:"userId"`
	ChatID    int64     `json:"chatId"`
	FirstName string    `json:"firstName"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}
