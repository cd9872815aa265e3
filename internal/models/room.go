package models

import "time"

// Room is a physical space sessions can be placed into.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Computers int       `db:"computers" json:"computers"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures supported filters for listing rooms.
type RoomFilter struct {
	MinCapacity int
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// RoomEquipment is a join row naming one piece of equipment installed in a room.
type RoomEquipment struct {
	RoomID string `db:"room_id" json:"room_id"`
	Item   string `db:"item" json:"item"`
}

// RoomSoftware is a join row naming one piece of software installed in a room.
type RoomSoftware struct {
	RoomID string `db:"room_id" json:"room_id"`
	Item   string `db:"item" json:"item"`
}
