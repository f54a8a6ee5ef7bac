package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleUser = "user"

// User is a client-site account. Users may submit listings but never reach
// the admin panel.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
