package enum

// ── Staff roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin    = "ADMIN"
	UserRoleWaiter   = "WAITER"
	UserRoleKitchen  = "KITCHEN"
	UserRoleDelivery = "DELIVERY"
)

// ── Realtime topics ──

const (
	TopicOrders    = "orders"
	TopicMenu      = "menu"
	TopicInventory = "inventory"
	TopicTasks     = "tasks"
	TopicDashboard = "dashboard"
)

// ── Event types ──

const (
	EventOrderCreated      = "order.created"
	EventOrderUpdated      = "order.updated"
	EventOrderCancelled    = "order.cancelled"
	EventPaymentAdded      = "payment.added"
	EventMenuUpdated       = "menu.updated"
	EventExpenseUpdated    = "expense.updated"
	EventInventoryUpdated  = "inventory.updated"
	EventInventoryLowStock = "inventory.low_stock"
	EventTaskUpdated       = "task.updated"
)

// IsTopic reports whether s is a topic clients may subscribe to.
func IsTopic(s string) bool {
	switch s {
	case TopicOrders, TopicMenu, TopicInventory, TopicTasks, TopicDashboard:
		return true
	}
	return false
}
