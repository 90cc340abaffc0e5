package models

import "time"

type Personnel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (Personnel) TableName() string {
	return "personnel"
}
