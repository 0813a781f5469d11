package apiclient

import "fmt"

// Backend route paths, relative to the configured base URL.
const (
	RouteAuthRegister = "/auth/register/"
	RouteAuthLogin    = "/auth/login/"
	RouteAuthRefresh  = "/auth/refresh/"
	RouteProfile      = "/profile/"

	RouteGroups        = "/groups/"
	RouteMyGroups      = "/groups/my-groups/"
	RouteMyAdminGroups = "/groups/my-admin-groups/"

	RouteSessions = "/sessions/"
)

func RouteGroupJoin(id int64) string {
	return fmt.Sprintf("/groups/%d/join/", id)
}

func RouteGroupLeave(id int64) string {
	return fmt.Sprintf("/groups/%d/leave/", id)
}

func RouteSessionDetail(id int64) string {
	return fmt.Sprintf("/sessions/%d/", id)
}
