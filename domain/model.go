package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username" validate:"required"`
	Password  string             `bson:"password" json:"-"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Role      Role               `bson:"role" json:"role" validate:"required,oneof=admin staff"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

type CustomFieldType string

const (
	FieldText    CustomFieldType = "text"
	FieldNumber  CustomFieldType = "number"
	FieldBoolean CustomFieldType = "boolean"
	FieldDate    CustomFieldType = "date"
)

// CustomField declares a per-accommodation guest attribute. The declared
// type is validated on the definition only; values are stored as raw strings.
type CustomField struct {
	Name         string          `bson:"name" json:"name" validate:"required"`
	Type         CustomFieldType `bson:"type" json:"type" validate:"required,oneof=text number boolean date"`
	DefaultValue interface{}     `bson:"defaultValue,omitempty" json:"defaultValue,omitempty"`
}

type Accommodation struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name" validate:"required"`
	Address        Address              `bson:"address,omitempty" json:"address"`
	Capacity       int                  `bson:"capacity" json:"capacity" validate:"gte=0"`
	CustomFields   []CustomField        `bson:"customFields" json:"customFields" validate:"dive"`
	Administrators []primitive.ObjectID `bson:"administrators" json:"administrators"`
	CreatedBy      primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt      time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasAdministrator reports whether the given user id is in the
// accommodation's administrators list.
func (a *Accommodation) HasAdministrator(userID primitive.ObjectID) bool {
	for _, id := range a.Administrators {
		if id == userID {
			return true
		}
	}
	return false
}

type Guest struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName          string             `bson:"firstName" json:"firstName" validate:"required"`
	LastName           string             `bson:"lastName" json:"lastName" validate:"required"`
	RoomNumber         string             `bson:"roomNumber" json:"roomNumber" validate:"required"`
	RoomKey            string             `bson:"roomKey" json:"roomKey"`
	Deposit            float64            `bson:"deposit" json:"deposit"`
	AdditionalBookings string             `bson:"additionalBookings" json:"additionalBookings"`
	SkiPassCategory    string             `bson:"skiPassCategory" json:"skiPassCategory"`
	CustomFields       map[string]string  `bson:"customFields" json:"customFields"`
	KeyReturned        bool               `bson:"keyReturned" json:"keyReturned"`
	PaymentCompleted   bool               `bson:"paymentCompleted" json:"paymentCompleted"`
	CheckedOut         bool               `bson:"checkedOut" json:"checkedOut"`
	Accommodation      primitive.ObjectID `bson:"accommodation" json:"accommodation" validate:"required"`
	CheckInDate        time.Time          `bson:"checkInDate" json:"checkInDate"`
	CheckOutDate       *time.Time         `bson:"checkOutDate,omitempty" json:"checkOutDate,omitempty"`
	Notes              string             `bson:"notes" json:"notes"`
	CreatedAt          time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt          time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// StatusUpdate carries the three independent guest status flags. Nil means
// "leave unchanged"; an explicit false is a valid value and is applied.
type StatusUpdate struct {
	PaymentCompleted *bool `json:"paymentCompleted,omitempty"`
	KeyReturned      *bool `json:"keyReturned,omitempty"`
	CheckedOut       *bool `json:"checkedOut,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Claims struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ReportSummary struct {
	CheckIns        int     `json:"checkIns"`
	CheckOuts       int     `json:"checkOuts"`
	PendingPayments int     `json:"pendingPayments"`
	MissingKeys     int     `json:"missingKeys"`
	OccupancyRate   float64 `json:"occupancyRate"`
}
