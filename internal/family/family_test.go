package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/models"
	"churchadmin/internal/roster"
)

func intp(n int) *int { return &n }

func clusterIDs(clusters []Cluster) [][]int64 {
	var out [][]int64
	for _, c := range clusters {
		var ids []int64
		for _, m := range c.Members {
			ids = append(ids, m.ID)
		}
		out = append(out, ids)
	}
	return out
}

func TestGroupMutualSpousesTerminate(t *testing.T) {
	members := []models.Member{
		{ID: 1, FirstName: "A", Age: intp(40), Relatives: map[string]int64{"spouse": 2}},
		{ID: 2, FirstName: "B", Age: intp(38), Relatives: map[string]int64{"spouse": 1}},
	}

	clusters := Group(members, members, DefaultOptions)

	require.Len(t, clusters, 1)
	assert.Equal(t, []int64{1, 2}, clusterIDs(clusters)[0])
	assert.Equal(t, int64(1), clusters[0].ID)
}

func TestGroupDanglingRelative(t *testing.T) {
	members := []models.Member{
		{ID: 1, FirstName: "Lone", Relatives: map[string]int64{"father": 99}},
		{ID: 2, FirstName: "Other"},
	}

	clusters := Group(members, members, DefaultOptions)

	assert.Equal(t, [][]int64{{1}, {2}}, clusterIDs(clusters))
}

func TestGroupUsesInverseEdges(t *testing.T) {
	members := []models.Member{
		{ID: 1, FirstName: "Parent", Age: intp(50)},
		{ID: 2, FirstName: "Child", Age: intp(20), Relatives: map[string]int64{"mother": 1}},
		{ID: 3, FirstName: "Grandchild", Age: intp(1), Relatives: map[string]int64{"father": 2}},
		{ID: 4, FirstName: "Stranger", Age: intp(30)},
	}

	clusters := Group(members, members, Options{MemberSort: MemberSortAge, ListSort: roster.SortByName, Order: roster.Asc})

	assert.Equal(t, [][]int64{{1, 2, 3}, {4}}, clusterIDs(clusters))
}

func TestGroupHiddenRelativeStillConnects(t *testing.T) {
	all := []models.Member{
		{ID: 1, FirstName: "Ana", Age: intp(40), Relatives: map[string]int64{"son": 2}},
		{ID: 2, FirstName: "Ben", Age: intp(15)},
		{ID: 3, FirstName: "Cris", Age: intp(12), Relatives: map[string]int64{"brother": 2}},
	}
	visible := []models.Member{all[0], all[2]}

	clusters := Group(all, visible, DefaultOptions)

	require.Len(t, clusters, 1, "the hidden member links the two visible ones")
	assert.Equal(t, []int64{1, 3}, clusterIDs(clusters)[0])
}

func TestGroupEveryVisibleMemberOnce(t *testing.T) {
	all := []models.Member{
		{ID: 1, FirstName: "Ana", Relatives: map[string]int64{"spouse": 2}},
		{ID: 2, FirstName: "Ben"},
		{ID: 3, FirstName: "Cora", Relatives: map[string]int64{"sister": 1, "self": 3}},
		{ID: 4, FirstName: "Dan"},
	}
	visible := []models.Member{all[1], all[3]}

	clusters := Group(all, visible, DefaultOptions)

	seen := map[int64]int{}
	for _, c := range clusters {
		for _, m := range c.Members {
			seen[m.ID]++
		}
	}
	assert.Equal(t, map[int64]int{2: 1, 4: 1}, seen)
}

func TestGroupClusterOrder(t *testing.T) {
	members := []models.Member{
		{ID: 1, FirstName: "Zed", Age: intp(30)},
		{ID: 2, FirstName: "Amy", Age: intp(60)},
		{ID: 3, FirstName: "Mia", Age: intp(45)},
	}

	asc := Group(members, members, Options{MemberSort: MemberSortAge, ListSort: roster.SortByName, Order: roster.Asc})
	assert.Equal(t, [][]int64{{2}, {3}, {1}}, clusterIDs(asc))

	desc := Group(members, members, Options{MemberSort: MemberSortAge, ListSort: roster.SortByAge, Order: roster.Desc})
	assert.Equal(t, [][]int64{{2}, {3}, {1}}, clusterIDs(desc))
}

func TestSortMembers(t *testing.T) {
	household := func() []models.Member {
		return []models.Member{
			{ID: 1, FirstName: "Kid", FamilyRole: "Son", Age: intp(10), DateOfBirth: "2014-01-01"},
			{ID: 2, FirstName: "Mom", FamilyRole: "Mother", Age: intp(41), DateOfBirth: "1983-01-01"},
			{ID: 3, FirstName: "Dad", FamilyRole: "Father", Age: intp(43), DateOfBirth: "1981-01-01"},
			{ID: 4, FirstName: "Ate", FamilyRole: "Daughter", Age: intp(16), DateOfBirth: "2008-01-01"},
			{ID: 5, FirstName: "Lola", Age: intp(80)},
		}
	}

	tests := []struct {
		key  MemberSortKey
		want []int64
	}{
		{MemberSortAge, []int64{5, 3, 2, 4, 1}},
		{MemberSortRole, []int64{3, 2, 4, 1, 5}},
		{MemberSortName, []int64{4, 3, 1, 5, 2}},
		{MemberSortDateOfBirth, []int64{5, 3, 2, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			ms := household()
			SortMembers(ms, tt.key)
			var got []int64
			for _, m := range ms {
				got = append(got, m.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRolePriorityAndLabels(t *testing.T) {
	assert.Equal(t, 0, RolePriority("Father"))
	assert.Equal(t, RolePriority("Son"), RolePriority("daughter"))
	assert.Greater(t, RolePriority("Cousin"), RolePriority("Sister"))
	assert.Equal(t, "Spouse", RelativeLabel("spouse"))
	assert.Equal(t, "godparent", RelativeLabel("godparent"))
}

func TestParseMemberSortKey(t *testing.T) {
	key, err := ParseMemberSortKey("")
	require.NoError(t, err)
	assert.Equal(t, MemberSortAge, key)

	_, err = ParseMemberSortKey("height")
	assert.Error(t, err)
}
