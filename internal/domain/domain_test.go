package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestBuildOrgTree(t *testing.T) {
	units := []OrgUnit{
		{ID: "root", Name: "HQ"},
		{ID: "it", Name: "IT", ParentID: strPtr("root")},
		{ID: "ops", Name: "Ops", ParentID: strPtr("it")},
		{ID: "orphan", Name: "Orphan", ParentID: strPtr("missing")},
	}

	roots := BuildOrgTree(units)

	assert.Len(t, roots, 2)
	assert.Equal(t, "root", roots[0].ID)
	assert.Len(t, roots[0].Children, 1)
	assert.Equal(t, "ops", roots[0].Children[0].Children[0].ID)
	assert.Equal(t, "orphan", roots[1].ID)
}

func TestDescendants_ParentsFirst(t *testing.T) {
	units := []OrgUnit{
		{ID: "a"},
		{ID: "b", ParentID: strPtr("a")},
		{ID: "c", ParentID: strPtr("a")},
		{ID: "d", ParentID: strPtr("b")},
		{ID: "x"},
	}

	got := Descendants(units, "a")

	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestDescendants_Cycle(t *testing.T) {
	units := []OrgUnit{
		{ID: "a", ParentID: strPtr("b")},
		{ID: "b", ParentID: strPtr("a")},
	}

	assert.ElementsMatch(t, []string{"a", "b"}, Descendants(units, "a"))
}

func TestTicketStatus(t *testing.T) {
	assert.True(t, TicketStatusPending.Valid())
	assert.False(t, TicketStatus("DONE").Valid())
	assert.True(t, TicketStatusClosed.IsTerminal())
	assert.False(t, TicketStatusResolved.IsTerminal())
}

func TestNotificationChannelSubscribes(t *testing.T) {
	ch := NotificationChannel{Events: []string{"ticket_created", "sla_breached"}}
	assert.True(t, ch.Subscribes("sla_breached"))
	assert.False(t, ch.Subscribes("ticket_assigned"))
	assert.True(t, ChannelLine.Valid())
	assert.False(t, ChannelType("SMS").Valid())
}
