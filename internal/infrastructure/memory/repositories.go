package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/comisiones-api/internal/domain"
	"github.com/jhoicas/comisiones-api/internal/domain/entity"
	"github.com/jhoicas/comisiones-api/internal/domain/repository"
	"github.com/jhoicas/comisiones-api/internal/domain/workflow"
)

var (
	_ repository.ProviderRepository       = (*ProviderRepository)(nil)
	_ repository.ServiceRepository        = (*ServiceRepository)(nil)
	_ repository.TicketRepository         = (*TicketRepository)(nil)
	_ repository.AccountPayableRepository = (*AccountPayableRepository)(nil)
	_ repository.CredentialsRepository    = (*CredentialsRepository)(nil)
	_ repository.ExportRunRepository      = (*ExportRunRepository)(nil)
)

func copyProvider(p entity.Provider) entity.Provider {
	if p.ExportedAt != nil {
		at := *p.ExportedAt
		p.ExportedAt = &at
	}
	switch d := p.Details.(type) {
	case *entity.IndividualDetails:
		c := *d
		p.Details = &c
	case *entity.CompanyDetails:
		c := *d
		p.Details = &c
	}
	return p
}

func copyTicket(t entity.Ticket) entity.Ticket {
	t.ServiceIDs = append([]string(nil), t.ServiceIDs...)
	return t
}

func copyRun(r entity.ExportRun) entity.ExportRun {
	r.Failures = append([]entity.ExportFailure(nil), r.Failures...)
	if r.FinishedAt != nil {
		at := *r.FinishedAt
		r.FinishedAt = &at
	}
	return r
}

// ProviderRepository prestadores.
type ProviderRepository struct {
	a access
	s *Store
}

func (r *ProviderRepository) Create(_ context.Context, p *entity.Provider) error {
	if err := r.s.failure("providers.Create"); err != nil {
		return err
	}
	return r.a.do(func(st *state) error {
		for _, o := range st.providers {
			if o.SID == p.SID || (p.SciUnico != "" && o.SciUnico == p.SciUnico) {
				return domain.ErrDuplicate
			}
		}
		st.providers[p.ID] = copyProvider(*p)
		return nil
	})
}

func (r *ProviderRepository) GetByID(_ context.Context, id string) (*entity.Provider, error) {
	var out *entity.Provider
	err := r.a.do(func(st *state) error {
		p, ok := st.providers[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := copyProvider(p)
		out = &c
		return nil
	})
	return out, err
}

func (r *ProviderRepository) GetBySID(_ context.Context, sid string) (*entity.Provider, error) {
	var out *entity.Provider
	err := r.a.do(func(st *state) error {
		for _, p := range st.providers {
			if p.SID == sid {
				c := copyProvider(p)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProviderRepository) MarkExported(_ context.Context, id string, at time.Time) (bool, error) {
	if err := r.s.failure("providers.MarkExported"); err != nil {
		return false, err
	}
	applied := false
	err := r.a.do(func(st *state) error {
		p, ok := st.providers[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.SciUnico != "" {
			return nil
		}
		p.Status = entity.ProviderStatusAwaitingERPCode
		p.ExportedAt = &at
		p.UpdatedAt = at
		st.providers[id] = p
		applied = true
		return nil
	})
	return applied, err
}

func (r *ProviderRepository) AssignERPCode(_ context.Context, id, sciUnico string, at time.Time) error {
	return r.a.do(func(st *state) error {
		p, ok := st.providers[id]
		if !ok {
			return domain.ErrNotFound
		}
		for oid, o := range st.providers {
			if oid != id && o.SciUnico == sciUnico {
				return domain.ErrDuplicate
			}
		}
		p.SciUnico = sciUnico
		p.Status = entity.ProviderStatusActive
		p.UpdatedAt = at
		st.providers[id] = p
		return nil
	})
}

// Put guarda el prestador tal cual (fixtures de tests).
func (r *ProviderRepository) Put(p *entity.Provider) {
	_ = r.a.do(func(st *state) error {
		st.providers[p.ID] = copyProvider(*p)
		return nil
	})
}

// All devuelve todos los prestadores.
func (r *ProviderRepository) All() []*entity.Provider {
	var out []*entity.Provider
	_ = r.a.do(func(st *state) error {
		for _, p := range st.providers {
			c := copyProvider(p)
			out = append(out, &c)
		}
		return nil
	})
	return out
}

// ServiceRepository servicios.
type ServiceRepository struct {
	a access
	s *Store
}

func (r *ServiceRepository) Create(_ context.Context, s *entity.Service) error {
	if err := r.s.failure("services.Create"); err != nil {
		return err
	}
	return r.a.do(func(st *state) error {
		if _, ok := st.providers[s.ProviderID]; !ok {
			return domain.ErrNotFound
		}
		st.services[s.ID] = *s
		return nil
	})
}

func (r *ServiceRepository) ListByIDs(_ context.Context, ids []string) ([]*entity.Service, error) {
	var out []*entity.Service
	err := r.a.do(func(st *state) error {
		for _, id := range ids {
			if s, ok := st.services[id]; ok {
				c := s
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// All devuelve todos los servicios.
func (r *ServiceRepository) All() []*entity.Service {
	var out []*entity.Service
	_ = r.a.do(func(st *state) error {
		for _, s := range st.services {
			c := s
			out = append(out, &c)
		}
		return nil
	})
	return out
}

// Put guarda el servicio tal cual (fixtures de tests).
func (r *ServiceRepository) Put(s *entity.Service) {
	_ = r.a.do(func(st *state) error {
		st.services[s.ID] = *s
		return nil
	})
}

// TicketRepository tickets.
type TicketRepository struct {
	a access
	s *Store
}

func (r *TicketRepository) Create(_ context.Context, t *entity.Ticket) error {
	if err := r.s.failure("tickets.Create"); err != nil {
		return err
	}
	return r.a.do(func(st *state) error {
		for _, id := range t.ServiceIDs {
			if _, ok := st.services[id]; !ok {
				return domain.ErrNotFound
			}
		}
		st.tickets[t.ID] = copyTicket(*t)
		return nil
	})
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.a.do(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := copyTicket(t)
		out = &c
		return nil
	})
	return out, err
}

func (r *TicketRepository) GetByPayableID(_ context.Context, payableID string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.a.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.AccountPayableID == payableID {
				c := copyTicket(t)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TicketRepository) ListForExport(_ context.Context) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	err := r.a.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.Etapa == workflow.EtapaIntegracaoUnico && t.Status != workflow.StatusConcluido {
				c := copyTicket(t)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (r *TicketRepository) UpdateState(_ context.Context, t *entity.Ticket) error {
	if err := r.s.failure("tickets.UpdateState"); err != nil {
		return err
	}
	return r.a.do(func(st *state) error {
		cur, ok := st.tickets[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != t.Version {
			return domain.ErrConflict
		}
		if t.AccountPayableID != "" {
			for id, o := range st.tickets {
				if id != t.ID && o.AccountPayableID == t.AccountPayableID {
					return domain.ErrDuplicate
				}
			}
		}
		cur.Etapa = t.Etapa
		cur.Status = t.Status
		cur.Observation = t.Observation
		cur.AccountPayableID = t.AccountPayableID
		cur.UpdatedAt = t.UpdatedAt
		cur.Version++
		st.tickets[t.ID] = cur
		t.Version = cur.Version
		return nil
	})
}

// Put guarda el ticket tal cual (fixtures de tests).
func (r *TicketRepository) Put(t *entity.Ticket) {
	_ = r.a.do(func(st *state) error {
		st.tickets[t.ID] = copyTicket(*t)
		return nil
	})
}

// All devuelve todos los tickets.
func (r *TicketRepository) All() []*entity.Ticket {
	var out []*entity.Ticket
	_ = r.a.do(func(st *state) error {
		for _, t := range st.tickets {
			c := copyTicket(t)
			out = append(out, &c)
		}
		return nil
	})
	return out
}

// AccountPayableRepository cuentas a pagar.
type AccountPayableRepository struct {
	a access
	s *Store
}

func (r *AccountPayableRepository) Create(_ context.Context, ap *entity.AccountPayable) error {
	return r.a.do(func(st *state) error {
		for _, o := range st.payables {
			if o.ExternalCode == ap.ExternalCode {
				return domain.ErrDuplicate
			}
		}
		st.payables[ap.ID] = *ap
		return nil
	})
}

func (r *AccountPayableRepository) GetByExternalCode(_ context.Context, code string) (*entity.AccountPayable, error) {
	var out *entity.AccountPayable
	err := r.a.do(func(st *state) error {
		for _, ap := range st.payables {
			if ap.ExternalCode == code {
				c := ap
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *AccountPayableRepository) UpdateTitleStatus(_ context.Context, id, titleStatus string) error {
	return r.a.do(func(st *state) error {
		ap, ok := st.payables[id]
		if !ok {
			return domain.ErrNotFound
		}
		ap.TitleStatus = titleStatus
		ap.UpdatedAt = time.Now()
		st.payables[id] = ap
		return nil
	})
}

func (r *AccountPayableRepository) Delete(_ context.Context, id string) error {
	if err := r.s.failure("payables.Delete"); err != nil {
		return err
	}
	return r.a.do(func(st *state) error {
		if _, ok := st.payables[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.payables, id)
		return nil
	})
}

// Put guarda la cuenta a pagar tal cual (fixtures de tests).
func (r *AccountPayableRepository) Put(ap *entity.AccountPayable) {
	_ = r.a.do(func(st *state) error {
		st.payables[ap.ID] = *ap
		return nil
	})
}

// CredentialsRepository credenciales del ERP.
type CredentialsRepository struct {
	a access
}

func (r *CredentialsRepository) Get(_ context.Context) (*entity.ERPCredentials, error) {
	var out *entity.ERPCredentials
	err := r.a.do(func(st *state) error {
		if st.creds != nil {
			c := *st.creds
			out = &c
		}
		return nil
	})
	return out, err
}

// ExportRunRepository ejecuciones de exportación.
type ExportRunRepository struct {
	a access
	s *Store
}

func (r *ExportRunRepository) Create(_ context.Context, run *entity.ExportRun) error {
	return r.a.do(func(st *state) error {
		st.runs[run.ID] = copyRun(*run)
		return nil
	})
}

func (r *ExportRunRepository) Finish(_ context.Context, run *entity.ExportRun) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.runs[run.ID]; !ok {
			return domain.ErrNotFound
		}
		st.runs[run.ID] = copyRun(*run)
		return nil
	})
}

func (r *ExportRunRepository) GetByID(_ context.Context, id string) (*entity.ExportRun, error) {
	var out *entity.ExportRun
	err := r.a.do(func(st *state) error {
		run, ok := st.runs[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := copyRun(run)
		out = &c
		return nil
	})
	return out, err
}
