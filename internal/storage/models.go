package storage

type Transaction struct {
	ID          string
	OwnerID     string
	Kind        string
	Title       string
	AmountCents int64
	Category    string
	DateMs      int64
	CreatedAt   int64
	UpdatedAt   int64
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    int64
}
