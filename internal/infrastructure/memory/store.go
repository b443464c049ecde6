// Package memory implementa los repositorios del dominio sobre mapas en memoria.
// Lo usan los tests de aplicación y de los handlers HTTP.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
)

type state struct {
	providers map[string]entity.Provider
	services  map[string]entity.Service
	tickets   map[string]entity.Ticket
	payables  map[string]entity.AccountPayable
	runs      map[string]entity.ExportRun
	creds     *entity.ERPCredentials
}

func newState() *state {
	return &state{
		providers: map[string]entity.Provider{},
		services:  map[string]entity.Service{},
		tickets:   map[string]entity.Ticket{},
		payables:  map[string]entity.AccountPayable{},
		runs:      map[string]entity.ExportRun{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.providers {
		c.providers[k] = copyProvider(v)
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = copyTicket(v)
	}
	for k, v := range s.payables {
		c.payables[k] = v
	}
	for k, v := range s.runs {
		c.runs[k] = copyRun(v)
	}
	if s.creds != nil {
		cr := *s.creds
		c.creds = &cr
	}
	return c
}

// Store contenedor de datos. Las transacciones trabajan sobre una copia que se
// publica solo si el callback termina sin error.
type Store struct {
	mu sync.Mutex
	st *state

	failMu sync.Mutex
	fail   map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), fail: map[string]error{}}
}

// FailOn hace que la operación op ("tickets.Create", "payables.Delete", ...) devuelva err.
// err nil quita la falla.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.fail[op]
}

// SetCredentials carga el registro de credenciales del ERP.
func (s *Store) SetCredentials(c *entity.ERPCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.st.creds = nil
		return
	}
	cr := *c
	s.st.creds = &cr
}

// access ejecuta fn sobre el estado: bajo el mutex del store o dentro de una tx.
type access interface {
	do(fn func(*state) error) error
}

type locked struct{ s *Store }

func (l locked) do(fn func(*state) error) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return fn(l.s.st)
}

type inTx struct{ st *state }

func (t inTx) do(fn func(*state) error) error { return fn(t.st) }

func (s *Store) run(fn func(a access) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(inTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repositorios fuera de transacción.
func (s *Store) Providers() *ProviderRepository { return &ProviderRepository{a: locked{s}, s: s} }
func (s *Store) Services() *ServiceRepository   { return &ServiceRepository{a: locked{s}, s: s} }
func (s *Store) Tickets() *TicketRepository     { return &TicketRepository{a: locked{s}, s: s} }
func (s *Store) Payables() *AccountPayableRepository {
	return &AccountPayableRepository{a: locked{s}, s: s}
}
func (s *Store) Credentials() *CredentialsRepository { return &CredentialsRepository{a: locked{s}} }
func (s *Store) ExportRuns() *ExportRunRepository     { return &ExportRunRepository{a: locked{s}, s: s} }

// RunImport ejecuta fn con repos de prestador, servicio y ticket en una transacción.
func (s *Store) RunImport(_ context.Context, fn func(
	providerRepo repository.ProviderRepository,
	serviceRepo repository.ServiceRepository,
	ticketRepo repository.TicketRepository,
) error) error {
	return s.run(func(a access) error {
		return fn(&ProviderRepository{a: a, s: s}, &ServiceRepository{a: a, s: s}, &TicketRepository{a: a, s: s})
	})
}

// RunReconcile ejecuta fn con repos de cuenta a pagar y ticket en una transacción.
func (s *Store) RunReconcile(_ context.Context, fn func(
	payableRepo repository.AccountPayableRepository,
	ticketRepo repository.TicketRepository,
) error) error {
	return s.run(func(a access) error {
		return fn(&AccountPayableRepository{a: a, s: s}, &TicketRepository{a: a, s: s})
	})
}
