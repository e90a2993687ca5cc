package domain

import "time"

// OrgUnit is a node in the reporter organization hierarchy.
type OrgUnit struct {
	ID        string
	Name      string
	Code      string
	ParentID  *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrgUnitNode is an OrgUnit with its resolved children.
type OrgUnitNode struct {
	OrgUnit
	Children []*OrgUnitNode
}

// BuildOrgTree arranges flat units into root nodes. Units whose parent is not
// in the list are treated as roots.
func BuildOrgTree(units []OrgUnit) []*OrgUnitNode {
	nodes := make(map[string]*OrgUnitNode, len(units))
	for i := range units {
		nodes[units[i].ID] = &OrgUnitNode{OrgUnit: units[i]}
	}
	roots := make([]*OrgUnitNode, 0)
	for i := range units {
		node := nodes[units[i].ID]
		if units[i].ParentID != nil {
			if parent, ok := nodes[*units[i].ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Descendants returns rootID and every unit beneath it, parents before
// children. The walk is iterative and tolerates cycles.
func Descendants(units []OrgUnit, rootID string) []string {
	children := make(map[string][]string, len(units))
	for _, u := range units {
		if u.ParentID != nil {
			children[*u.ParentID] = append(children[*u.ParentID], u.ID)
		}
	}
	visited := map[string]bool{rootID: true}
	order := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			order = append(order, child)
			queue = append(queue, child)
		}
	}
	return order
}
