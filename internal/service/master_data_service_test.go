package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itops-lab/helpdesk/internal/domain"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

func orgFixture() (*MasterDataService, *memOrgUnitRepo) {
	repo := &memOrgUnitRepo{units: []domain.OrgUnit{
		{ID: "hq", Name: "Head Office", IsActive: true},
		{ID: "it", Name: "IT", ParentID: ptr("hq"), IsActive: true},
		{ID: "infra", Name: "Infrastructure", ParentID: ptr("it"), IsActive: true},
		{ID: "apps", Name: "Applications", ParentID: ptr("it"), IsActive: false},
		{ID: "noc", Name: "NOC", ParentID: ptr("infra"), IsActive: true},
		{ID: "hr", Name: "HR", ParentID: ptr("hq"), IsActive: true},
	}}
	return NewMasterDataService(MasterDataDependencies{OrgUnitRepo: repo}), repo
}

func TestDeleteOrgUnit_DeepestFirst(t *testing.T) {
	svc, repo := orgFixture()

	removed, err := svc.DeleteOrgUnit(context.Background(), "it")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"it", "infra", "apps", "noc"}, removed)
	assert.Equal(t, removed, repo.deleted)

	pos := map[string]int{}
	for i, id := range removed {
		pos[id] = i
	}
	assert.Less(t, pos["noc"], pos["infra"])
	assert.Less(t, pos["infra"], pos["it"])
	assert.Less(t, pos["apps"], pos["it"])
	assert.Equal(t, "it", removed[len(removed)-1])
}

func TestDeleteOrgUnit_Unknown(t *testing.T) {
	svc, repo := orgFixture()

	_, err := svc.DeleteOrgUnit(context.Background(), "nope")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	assert.Empty(t, repo.deleted)
}

func TestUpdateOrgUnit_RejectsCycles(t *testing.T) {
	svc, _ := orgFixture()
	ctx := context.Background()

	for _, parent := range []string{"it", "noc"} {
		_, err := svc.UpdateOrgUnit(ctx, &domain.OrgUnit{ID: "it", Name: "IT", ParentID: ptr(parent), IsActive: true})
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err), parent)
	}

	moved, err := svc.UpdateOrgUnit(ctx, &domain.OrgUnit{ID: "noc", Name: " NOC ", ParentID: ptr("hr"), IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "hr", *moved.ParentID)
	assert.Equal(t, "NOC", moved.Name)
}

func TestCreateOrgUnit_ParentMustExist(t *testing.T) {
	svc, _ := orgFixture()

	_, err := svc.CreateOrgUnit(context.Background(), &domain.OrgUnit{Name: "Ops", ParentID: ptr("ghost")})
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	unit, err := svc.CreateOrgUnit(context.Background(), &domain.OrgUnit{Name: "Ops", ParentID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, unit.ParentID)
}

func TestOrgTree_InactiveFilter(t *testing.T) {
	svc, _ := orgFixture()

	roots, err := svc.OrgTree(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 2)
	for _, child := range roots[0].Children {
		if child.ID == "it" {
			assert.Len(t, child.Children, 1, "inactive apps unit hidden")
		}
	}
}

func TestValidateSLA(t *testing.T) {
	tests := []struct {
		name     string
		response *int
		resolve  *int
		field    string
	}{
		{"both unset", nil, nil, ""},
		{"valid", ptr(60), ptr(480), ""},
		{"equal", ptr(60), ptr(60), ""},
		{"zero response", ptr(0), nil, "sla_first_response_minutes"},
		{"negative resolve", nil, ptr(-5), "sla_resolve_minutes"},
		{"resolve shorter", ptr(120), ptr(60), "sla_resolve_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSLA(&domain.Priority{SLAFirstResponseMins: tt.response, SLAResolveMins: tt.resolve})
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			derr := apperrors.ToDomainError(err)
			require.NotNil(t, derr)
			assert.Equal(t, "VALIDATION_FAILED", derr.Code)
			assert.Contains(t, derr.Details, tt.field)
		})
	}
}
