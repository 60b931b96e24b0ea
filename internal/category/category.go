package category

// Category groups products for browsing in the bot menu.
type Category struct {
	ID   int64  `json:"categoryId"`
	Name string `json:"name"`
}
