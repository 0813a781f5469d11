package state

import (
	"slices"

	"github.com/jrsteele09/studygroup-client/models"
)

const (
	OpFetchGroups       = "groups/fetchGroups"
	OpFetchJoinedGroups = "groups/fetchJoinedGroups"
	OpFetchAdminGroups  = "groups/fetchAdminGroups"
	OpCreateGroup       = "groups/createGroup"
	OpJoinGroup         = "groups/joinGroup"
	OpLeaveGroup        = "groups/leaveGroup"
)

// GroupsState mirrors the groups the user can explore, has joined, and administers.
type GroupsState struct {
	Explore  []models.Group
	Joined   []models.Group
	Admin    []models.Group
	Selected *models.Group
	Loading  bool
	Error    *ActionError
}

type GroupsPending struct{ Op string }

type GroupsRejected struct {
	Op  string
	Err *ActionError
}

type ExploreGroupsLoaded struct{ Groups []models.Group }
type JoinedGroupsLoaded struct{ Groups []models.Group }
type AdminGroupsLoaded struct{ Groups []models.Group }
type GroupCreated struct{ Group models.Group }
type GroupJoined struct{ ID int64 }
type GroupLeft struct{ ID int64 }
type SetSelectedGroup struct{ Group *models.Group }
type ClearGroups struct{}
type ClearGroupsError struct{}

func (a GroupsPending) Type() string     { return a.Op + "/pending" }
func (a GroupsRejected) Type() string    { return a.Op + "/rejected" }
func (ExploreGroupsLoaded) Type() string { return OpFetchGroups + "/fulfilled" }
func (JoinedGroupsLoaded) Type() string  { return OpFetchJoinedGroups + "/fulfilled" }
func (AdminGroupsLoaded) Type() string   { return OpFetchAdminGroups + "/fulfilled" }
func (GroupCreated) Type() string        { return OpCreateGroup + "/fulfilled" }
func (GroupJoined) Type() string         { return OpJoinGroup + "/fulfilled" }
func (GroupLeft) Type() string           { return OpLeaveGroup + "/fulfilled" }
func (SetSelectedGroup) Type() string    { return "groups/setSelectedGroup" }
func (ClearGroups) Type() string         { return "groups/clearGroups" }
func (ClearGroupsError) Type() string    { return "groups/clearError" }

// ReduceGroups is the groups slice reducer. Joining moves a group from Explore to Joined and
// leaving moves it back; an id that is not in the source list changes nothing.
func ReduceGroups(s GroupsState, a Action) GroupsState {
	switch a := a.(type) {
	case GroupsPending:
		s.Loading = true
		s.Error = nil
	case GroupsRejected:
		s.Loading = false
		s.Error = a.Err
	case ExploreGroupsLoaded:
		s.Loading = false
		s.Explore = slices.Clone(a.Groups)
	case JoinedGroupsLoaded:
		s.Loading = false
		s.Joined = slices.Clone(a.Groups)
	case AdminGroupsLoaded:
		s.Loading = false
		s.Admin = slices.Clone(a.Groups)
	case GroupCreated:
		s.Loading = false
		s.Admin = append(slices.Clone(s.Admin), a.Group)
	case GroupJoined:
		s.Loading = false
		s.Explore, s.Joined = moveGroup(s.Explore, s.Joined, a.ID)
	case GroupLeft:
		s.Loading = false
		s.Joined, s.Explore = moveGroup(s.Joined, s.Explore, a.ID)
	case SetSelectedGroup:
		s.Selected = a.Group
	case ClearGroups:
		s.Explore = nil
		s.Joined = nil
		s.Admin = nil
		s.Selected = nil
	case ClearGroupsError:
		s.Error = nil
	case Reset:
		return GroupsState{}
	}
	return s
}

func moveGroup(from, to []models.Group, id int64) ([]models.Group, []models.Group) {
	i := models.IndexOfGroup(from, id)
	if i == -1 {
		return from, to
	}
	group := from[i]
	return slices.Delete(slices.Clone(from), i, i+1), append(slices.Clone(to), group)
}
