package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/proposal"
	"github.com/spec-kit/process-raci/internal/repository/repotest"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

type fixture struct {
	departments *repotest.Departments
	processes   *repotest.Processes
	raci        *repotest.Raci
	activities  *repotest.Activities
	cache       *repotest.Cache
	dispatcher  events.Dispatcher

	org      *OrgService
	process  *ProcessService
	matrices *RaciService
	activity *ActivityService
}

type proposerFunc func(context.Context, proposal.Request) (domain.ProcessCandidate, error)

func (f proposerFunc) Propose(ctx context.Context, req proposal.Request) (domain.ProcessCandidate, error) {
	return f(ctx, req)
}

func newFixture(t *testing.T, proposer proposal.Proposer) *fixture {
	t.Helper()
	f := &fixture{
		departments: &repotest.Departments{},
		processes:   &repotest.Processes{},
		raci:        &repotest.Raci{},
		activities:  &repotest.Activities{},
		cache:       &repotest.Cache{},
		dispatcher:  events.NewInMemoryDispatcher(nil),
	}
	f.org = NewOrgService(OrgDependencies{
		DepartmentRepo: f.departments,
		ProcessRepo:    f.processes,
		Dispatcher:     f.dispatcher,
	})
	f.process = NewProcessService(ProcessDependencies{
		ProcessRepo:    f.processes,
		DepartmentRepo: f.departments,
		Proposer:       proposer,
		Cache:          f.cache,
		Dispatcher:     f.dispatcher,
		Diagram:        config.DiagramConfig{Direction: "TD", LabelWidth: 28, ShowLanes: true, CacheTTLSeconds: 60},
	})
	f.matrices = NewRaciService(config.RaciConfig{CacheTTLSeconds: 60}, RaciDependencies{
		ProcessRepo:    f.processes,
		DepartmentRepo: f.departments,
		RaciRepo:       f.raci,
		Cache:          f.cache,
		Dispatcher:     f.dispatcher,
	})
	f.activity = NewActivityService(f.dispatcher, f.activities, nil)
	NewInvalidationService(f.dispatcher, f.cache, nil).RegisterHandlers()
	f.activity.RegisterHandlers()
	return f
}

// seedSales stores a Sales department with Rep and Head roles.
func (f *fixture) seedSales() {
	f.departments.Seed(domain.Department{
		ID: "d-sales", Name: "Sales", Color: "#16a34a",
		Roles: []domain.Role{
			{ID: "r-rep", DepartmentID: "d-sales", Name: "Rep", Color: "#2563eb"},
			{ID: "r-head", DepartmentID: "d-sales", Name: "Head", Color: "#dc2626"},
		},
	})
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a DomainError, got %v", err)
	require.Equal(t, code, domainErr.Code, domainErr.Message)
}

func ptr(s string) *string { return &s }
