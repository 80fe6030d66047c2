package registry

import "time"

type RegisterCopyInput struct {
	BookID   string `json:"book_id" validate:"required,max=64"`
	CopyCode string `json:"copy_code" validate:"required,max=64"`
}

type CopyDTO struct {
	CopyID    string    `json:"copy_id"`
	BookID    string    `json:"book_id"`
	CopyCode  string    `json:"copy_code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
