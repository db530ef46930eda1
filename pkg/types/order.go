package types

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusCompleted:
		return true
	}
	return false
}

type OrderSource string

const (
	OrderSourceAPI     OrderSource = "API"
	OrderSourceManual  OrderSource = "MANUAL"
	OrderSourcePartner OrderSource = "PARTNER"
)
