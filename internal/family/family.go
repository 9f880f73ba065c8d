// Package family groups members into households by following their
// relatives links.
package family

import (
	"sort"

	"churchadmin/internal/models"
	"churchadmin/internal/roster"
)

// Cluster is one household. ID is the id of its first member after sorting.
type Cluster struct {
	ID      int64           `json:"id"`
	Members []models.Member `json:"members"`
}

// Options control ordering inside and across clusters.
type Options struct {
	MemberSort MemberSortKey
	ListSort   roster.SortKey
	Order      roster.Order
}

// DefaultOptions order members oldest first and households by name.
var DefaultOptions = Options{MemberSort: MemberSortAge, ListSort: roster.SortByName, Order: roster.Asc}

// graph is an undirected adjacency list over member ids.
type graph map[int64][]int64

// buildGraph links every member to the relatives it lists and to everyone
// who lists it. Edges to unknown ids are dropped.
func buildGraph(members map[int64]*models.Member) graph {
	seen := make(map[[2]int64]bool)
	g := make(graph, len(members))
	link := func(a, b int64) {
		if seen[[2]int64{a, b}] {
			return
		}
		seen[[2]int64{a, b}] = true
		g[a] = append(g[a], b)
	}

	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m := members[id]
		relations := make([]string, 0, len(m.Relatives))
		for rel := range m.Relatives {
			relations = append(relations, rel)
		}
		sort.Strings(relations)

		for _, rel := range relations {
			target := m.Relatives[rel]
			if target == id {
				continue
			}
			if _, ok := members[target]; !ok {
				continue
			}
			link(id, target)
			link(target, id)
		}
	}
	return g
}

// component collects every id reachable from start. visited is shared
// across calls so each id is expanded at most once.
func (g graph) component(start int64, visited map[int64]bool) []int64 {
	visited[start] = true
	queue := []int64{start}
	var out []int64
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, next := range g[id] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}

// Group clusters the visible members into households. Connectivity is
// computed over all members, so a hidden relative still joins its visible
// kin, but each cluster only lists visible members. Every visible member
// appears in exactly one cluster.
func Group(all, visible []models.Member, opts Options) []Cluster {
	index := make(map[int64]*models.Member, len(all))
	for i := range all {
		index[all[i].ID] = &all[i]
	}
	shown := make(map[int64]*models.Member, len(visible))
	for i := range visible {
		shown[visible[i].ID] = &visible[i]
		if _, ok := index[visible[i].ID]; !ok {
			index[visible[i].ID] = &visible[i]
		}
	}

	g := buildGraph(index)
	visited := make(map[int64]bool, len(index))

	var clusters []Cluster
	for _, v := range visible {
		if visited[v.ID] {
			continue
		}
		var members []models.Member
		for _, id := range g.component(v.ID, visited) {
			if m, ok := shown[id]; ok {
				members = append(members, *m)
			}
		}
		SortMembers(members, opts.MemberSort)
		clusters = append(clusters, Cluster{ID: members[0].ID, Members: members})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		c := roster.Compare(&clusters[i].Members[0], &clusters[j].Members[0], opts.ListSort)
		if opts.Order == roster.Desc {
			return c > 0
		}
		return c < 0
	})
	return clusters
}
