package models

import "time"

// Customer is the license holder. Order provisioning creates one on the fly
// when an approved order carries no resolved customer reference.
type Customer struct {
	CustomerID    int64  `gorm:"column:customer_id;primary_key;autoIncrement" json:"customer_id"`
	CustomerName  string `gorm:"column:customer_name;type:varchar(100);not null" json:"customer_name"`
	ContactPerson string `gorm:"column:contact_person;type:varchar(100)" json:"contact_person"`
	ContactEmail  string `gorm:"column:contact_email;type:varchar(100)" json:"contact_email"`
	ContactPhone  string `gorm:"column:contact_phone;type:varchar(20)" json:"contact_phone"`
	Address       string `gorm:"column:address;type:varchar(255)" json:"address"`
	Industry      string `gorm:"column:industry;type:varchar(50)" json:"industry"`
	CustomerType  string `gorm:"column:customer_type;type:varchar(50)" json:"customer_type"`
	Region        string `gorm:"column:region;type:varchar(50)" json:"region"`
	Notes         string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
