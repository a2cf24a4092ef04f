package shared

import "context"

// Resource names mirror the backend's permission resource keys.
type Resource string

// Known business resources.
const (
	ResourceSaleInvoice     Resource = "sale-invoice"
	ResourcePurchaseInvoice Resource = "purchase-invoice"
	ResourceSaleReturn      Resource = "sale-return"
	ResourcePurchaseReturn  Resource = "purchase-return"
	ResourceCustomerLedger  Resource = "customer-ledger"
	ResourceSupplierLedger  Resource = "supplier-ledger"
	ResourceCustomer        Resource = "customer"
	ResourceSupplier        Resource = "supplier"
	ResourceUser            Resource = "user"
)

// Capability is the permission set resolved for one resource. The checks are
// advisory on the client; the server enforces them independently.
type Capability struct {
	View   bool
	Create bool
	Update bool
	Delete bool
	Import bool
	Export bool
}

// FullAccess grants every action.
func FullAccess() Capability {
	return Capability{View: true, Create: true, Update: true, Delete: true, Import: true, Export: true}
}

// ViewOnly grants read access only.
func ViewOnly() Capability {
	return Capability{View: true}
}

// CapabilityResolver resolves the capability set for a named resource.
// Resolution happens once per page load; the resulting Capability is passed
// explicitly to the engine or controller that needs it.
type CapabilityResolver interface {
	CanFor(ctx context.Context, resource Resource) (Capability, error)
}

// StaticResolver resolves capabilities from a fixed map. Unknown resources
// resolve to no access.
type StaticResolver map[Resource]Capability

// CanFor implements CapabilityResolver.
func (r StaticResolver) CanFor(_ context.Context, resource Resource) (Capability, error) {
	return r[resource], nil
}
