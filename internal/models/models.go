package models

import "time"

type User struct {
	ID           string `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"hash" json:"-"`
	Cash         int64  `db:"cash" json:"cash"`
}

// Order is one row of the append-only transaction log. Shares is negative for sells.
type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Shares     int64     `json:"shares"`
	Price      int64     `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Holding is derived from the order log, never stored.
type Holding struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
}

type Position struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Shares int64  `json:"shares"`
	Price  int64  `json:"price"`
	Value  int64  `json:"value"`
	Priced bool   `json:"priced"`
}

type Portfolio struct {
	Positions []Position `json:"positions"`
	Cash      int64      `json:"cash"`
	Total     int64      `json:"total"`
}

type AuditEntry struct {
	ID          string  `db:"id" json:"id"`
	ActorUserID *string `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Action      string  `db:"action" json:"action"`
	EntityType  string  `db:"entity_type" json:"entity_type"`
	EntityID    string  `db:"entity_id" json:"entity_id"`
	Data        string  `db:"data" json:"data"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}
