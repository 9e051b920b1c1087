package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Admin is the single operator identity for the console.
type Admin struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // bcrypt hash
}
