// Package memory implements the storage contracts with process-local maps.
//
// Portal state lives for the process lifetime and clears on restart. Each
// store guards its maps with an RWMutex because every request goroutine
// reaches them; callers only ever go through the repository interfaces.
//
// Stores hand out copies, never pointers into their maps, so a caller
// mutating a returned entity cannot corrupt shared state.
package memory

import (
	"github.com/qially/portal/internal/storage"
)

// Stores bundles one instance of every repository, the unit main wires into
// the handlers. Tests construct their own isolated Stores per test case.
type Stores struct {
	Tenants         storage.TenantRepository
	Users           storage.UserRepository
	Projects        storage.ProjectRepository
	KbFiles         storage.KbFileRepository
	Conversations   storage.ConversationRepository
	Messages        storage.MessageRepository
	Invoices        storage.InvoiceRepository
	ServiceRequests storage.ServiceRequestRepository
}

func NewStores() *Stores {
	return &Stores{
		Tenants:         NewTenantStore(),
		Users:           NewUserStore(),
		Projects:        NewProjectStore(),
		KbFiles:         NewKbFileStore(),
		Conversations:   NewConversationStore(),
		Messages:        NewMessageStore(),
		Invoices:        NewInvoiceStore(),
		ServiceRequests: NewServiceRequestStore(),
	}
}
