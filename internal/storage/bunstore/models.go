package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-personal-budget/budget"
)

type itemModel struct {
	bun.BaseModel `bun:"table:items"`

	ID   int    `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,type:varchar(100)"`
	Type int    `bun:"type,notnull"`
}

func (m *itemModel) toDomain() *budget.Item {
	return &budget.Item{
		ID:   m.ID,
		Name: m.Name,
		Type: budget.OperationType(m.Type),
	}
}

type operationModel struct {
	bun.BaseModel `bun:"table:operations"`

	ID       int        `bun:"id,pk,autoincrement"`
	Date     time.Time  `bun:"date,notnull"`
	Type     int        `bun:"type,notnull"`
	Sum      float64    `bun:"sum,notnull"`
	ItemID   *int       `bun:"item_id"`
	Item     *itemModel `bun:"rel:belongs-to,join:item_id=id"`
	AuthorID string     `bun:"author_id,notnull,type:varchar(36)"`
}

func (m *operationModel) toDomain() *budget.Operation {
	op := &budget.Operation{
		ID:       m.ID,
		Date:     m.Date.UTC(),
		Type:     budget.OperationType(m.Type),
		Sum:      m.Sum,
		AuthorID: m.AuthorID,
	}
	if m.Item != nil {
		op.Item = m.Item.toDomain()
	}
	return op
}

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID           string `bun:"id,pk,type:varchar(36)"`
	Email        string `bun:"email,notnull,unique,type:varchar(254)"`
	PasswordHash string `bun:"password_hash,notnull"`
	Role         string `bun:"role,notnull,type:varchar(16)"`
}

func (m *userModel) toDomain() *budget.User {
	return &budget.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
	}
}
